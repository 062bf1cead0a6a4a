// Package assistant answers natural-language questions about employee
// attendance and performance from the live index.
package assistant

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"emptrack/internal/convlog"
	"emptrack/internal/document"
	"emptrack/internal/domain"
	"emptrack/internal/index"
	"emptrack/internal/source"
)

// NoMatch is returned for every query the assistant cannot answer.
const NoMatch = "No matching information found."

const employeeTopK = 8

var domainKeywords = []string{
	"performance", "attendance", "ratio", "check-in", "check in",
	"checked in", "checked-in", "work mode", "wfh", "wfo", "leave",
	"status", "dashboard", "employee",
}

// Router classifies a query and renders the answer.
type Router struct {
	index  *index.Index
	log    convlog.Log
	logger *zap.Logger
}

// New creates a router. A nil log discards the conversation.
func New(ix *index.Index, log convlog.Log, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.L()
	}
	if log == nil {
		log = convlog.NewMemory()
	}
	return &Router{index: ix, log: log, logger: logger.Named("assistant")}
}

// Answer never fails: anything it cannot resolve yields NoMatch.
func (r *Router) Answer(query string) string {
	logger := r.logger.With(zap.String("request_id", uuid.NewString()))
	answer := r.answer(query, logger)
	r.log.Append(
		convlog.Message{Role: convlog.RoleUser, Content: query},
		convlog.Message{Role: convlog.RoleAssistant, Content: answer},
	)
	return squeezeBlankLines(answer)
}

func (r *Router) answer(query string, logger *zap.Logger) (out string) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("answer panicked", zap.Any("panic", p))
			out = NoMatch
		}
	}()
	q := strings.ToLower(strings.TrimSpace(query))
	if !inDomain(q) {
		logger.Debug("query outside domain", zap.String("query", query))
		return NoMatch
	}
	out = NoMatch
	tr := r.index.View(func(v index.View) {
		if !v.Ready() {
			return
		}
		if strings.Contains(q, "dashboard") {
			if e, ok := matchEmployee(v.Directory(), query); ok {
				out = renderDashboard(e, v.Summarizer())
				return
			}
		}
		for _, intent := range detectIntents(q) {
			if ans, ok := aggregateAnswer(v, intent); ok {
				out = ans
				return
			}
		}
		if ans, ok := employeeAnswer(v, query); ok {
			out = ans
		}
	})
	logger.Debug("answered", zap.String("index", tr.String()), zap.Bool("matched", out != NoMatch))
	return out
}

func inDomain(q string) bool {
	for _, k := range domainKeywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// detectIntents returns the aggregate intents to try, in order.
func detectIntents(q string) []domain.Intent {
	switch {
	case containsAny(q, "on leave", "leave today", "who is on leave"):
		return []domain.Intent{domain.IntentOnLeave}
	case containsAny(q, "checked in today", "checked-in today", "who checked-in", "who checked in"):
		return []domain.Intent{domain.IntentCheckedIn}
	case strings.Contains(q, "attendance ratio"):
		return []domain.Intent{domain.IntentAttendanceRatio}
	case containsAny(q, "work mode", "wfh", "wfo"):
		if strings.Contains(q, "wfh") && !strings.Contains(q, "wfo") {
			return []domain.Intent{domain.IntentWFH, domain.IntentWFO}
		}
		return []domain.Intent{domain.IntentWFO, domain.IntentWFH}
	}
	return nil
}

// aggregateAnswer searches the intent phrase and answers only when the
// top hit is that intent's aggregate document.
func aggregateAnswer(v index.View, intent domain.Intent) (string, bool) {
	hits := v.Search(document.Phrases[intent][0], 1)
	if len(hits) == 0 {
		return "", false
	}
	md := hits[0].Document.Metadata
	if md.Kind != domain.KindAggregate || md.Aggregate == nil || md.Aggregate.Intent != intent {
		return "", false
	}
	return renderAggregate(*md.Aggregate), true
}

// employeeAnswer takes the first employee hit with a positive score.
// When the query names a directory member, that member's hit is
// preferred over higher-ranked ones.
func employeeAnswer(v index.View, query string) (string, bool) {
	hits := v.Search(query, employeeTopK)
	named, hasName := matchEmployee(v.Directory(), query)
	var first *domain.EmployeeMeta
	for _, h := range hits {
		md := h.Document.Metadata
		if md.Kind != domain.KindEmployee || md.Employee == nil || h.Score <= 0 {
			continue
		}
		if hasName && md.Employee.EmpID == named.EmpID {
			return renderEmployee(md.Employee), true
		}
		if first == nil {
			first = md.Employee
		}
	}
	if first == nil {
		return "", false
	}
	return renderEmployee(first), true
}

// matchEmployee resolves a directory member named in the query: an
// emp_id substring first, then the full name, then any name part
// longer than two letters matching a query word.
func matchEmployee(dir *source.Directory, query string) (domain.Employee, bool) {
	all := dir.All()
	upper := strings.ToUpper(query)
	for _, e := range all {
		if e.EmpID != "" && strings.Contains(upper, e.EmpID) {
			return e, true
		}
	}
	lower := strings.ToLower(query)
	for _, e := range all {
		if n := strings.ToLower(strings.TrimSpace(e.Name)); n != "" && strings.Contains(lower, n) {
			return e, true
		}
	}
	words := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(lower, isSeparator) {
		words[w] = struct{}{}
	}
	for _, e := range all {
		for _, part := range strings.Fields(strings.ToLower(e.Name)) {
			if len(part) <= 2 {
				continue
			}
			if _, ok := words[part]; ok {
				return e, true
			}
		}
	}
	return domain.Employee{}, false
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// squeezeBlankLines collapses runs of blank lines and trims the ends.
func squeezeBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
