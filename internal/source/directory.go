package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"emptrack/internal/domain"
)

// Directory is the employee directory keyed by canonical emp_id.
// Iteration follows the order employees were first added.
type Directory struct {
	byID  map[string]domain.Employee
	order []string
}

// NewDirectory builds a directory from the given employees. A later
// duplicate of an emp_id replaces the record but keeps its position.
func NewDirectory(employees ...domain.Employee) *Directory {
	d := &Directory{byID: make(map[string]domain.Employee, len(employees))}
	for _, e := range employees {
		e.EmpID = domain.CanonicalID(e.EmpID)
		if e.EmpID == "" {
			continue
		}
		if _, seen := d.byID[e.EmpID]; !seen {
			d.order = append(d.order, e.EmpID)
		}
		d.byID[e.EmpID] = e
	}
	return d
}

// LoadDirectory reads the JSON directory store: an object mapping
// emp_id to {password_hash, name, email, department, role}. File order
// is preserved.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return NewDirectory(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("parsing directory: expected a JSON object")
	}
	var employees []domain.Employee
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing directory: %w", err)
		}
		id, _ := tok.(string)
		var e domain.Employee
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("parsing directory entry %q: %w", id, err)
		}
		e.EmpID = id
		employees = append(employees, e)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing directory: %w", err)
	}
	return NewDirectory(employees...), nil
}

// Get looks up an employee case-insensitively.
func (d *Directory) Get(empID string) (domain.Employee, bool) {
	if d == nil {
		return domain.Employee{}, false
	}
	e, ok := d.byID[domain.CanonicalID(empID)]
	return e, ok
}

// All returns employees in directory order.
func (d *Directory) All() []domain.Employee {
	if d == nil {
		return nil
	}
	out := make([]domain.Employee, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.byID[id])
	}
	return out
}

// Len returns the number of employees.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}
