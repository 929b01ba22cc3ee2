/*
Package factory provides JSON to Go leave-type conversion.

PURPOSE:
  Converts JSON leave-type definitions into leave.LeaveType values.
  This enables leave configuration without code changes - HR can define
  types in JSON, and the factory creates the proper Go structs. The
  approval workflow chain is parsed here, once, so nothing downstream
  ever re-splits the stored definition.

JSON SCHEMA:
  {
    "id": "annual",
    "name": "Annual Leave",
    "is_paid": true,
    "deducts_from_annual": true,
    "document_required": false,
    "request_unit": "DAY",
    "workflow": "HR,MANAGER,CEO"
  }

USAGE:
  factory := NewLeaveTypeFactory()
  lt, err := factory.Parse(jsonString)

  // Or seed the standard catalog:
  for _, lt := range factory.Defaults() {
      store.SaveLeaveType(ctx, lt)
  }

SEE ALSO:
  - leave/types.go: LeaveType and Workflow definitions
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/furkangemici/leave-management-system-sub000/leave"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// LeaveTypeJSON is the JSON representation of a leave type.
type LeaveTypeJSON struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IsPaid            bool   `json:"is_paid"`
	DeductsFromAnnual bool   `json:"deducts_from_annual"`
	DocumentRequired  bool   `json:"document_required"`
	RequestUnit       string `json:"request_unit,omitempty"` // DAY (default) or HOUR
	Workflow          string `json:"workflow"`               // "HR,MANAGER,CEO"
	IsActive          *bool  `json:"is_active,omitempty"`    // default true
}

// =============================================================================
// FACTORY
// =============================================================================

type LeaveTypeFactory struct{}

func NewLeaveTypeFactory() *LeaveTypeFactory {
	return &LeaveTypeFactory{}
}

// Parse converts a JSON definition into a LeaveType.
func (f *LeaveTypeFactory) Parse(jsonStr string) (*leave.LeaveType, error) {
	var lj LeaveTypeJSON
	if err := json.Unmarshal([]byte(jsonStr), &lj); err != nil {
		return nil, fmt.Errorf("invalid leave type JSON: %w", err)
	}
	return f.FromJSON(lj)
}

// FromJSON converts the schema struct into a LeaveType, applying
// defaults and validating.
func (f *LeaveTypeFactory) FromJSON(lj LeaveTypeJSON) (*leave.LeaveType, error) {
	if lj.ID == "" {
		return nil, fmt.Errorf("leave type id is required")
	}
	if lj.Name == "" {
		return nil, fmt.Errorf("leave type name is required")
	}

	unit := leave.UnitDay
	switch lj.RequestUnit {
	case "", string(leave.UnitDay):
	case string(leave.UnitHour):
		unit = leave.UnitHour
	default:
		return nil, fmt.Errorf("unknown request unit %q", lj.RequestUnit)
	}

	workflow := leave.ParseWorkflow(lj.Workflow)
	if workflow.IsEmpty() {
		return nil, fmt.Errorf("leave type %s has no approval workflow", lj.ID)
	}

	active := true
	if lj.IsActive != nil {
		active = *lj.IsActive
	}

	return &leave.LeaveType{
		ID:                lj.ID,
		Name:              lj.Name,
		IsPaid:            lj.IsPaid,
		DeductsFromAnnual: lj.DeductsFromAnnual,
		DocumentRequired:  lj.DocumentRequired,
		RequestUnit:       unit,
		Workflow:          workflow,
		IsActive:          active,
	}, nil
}

// ToJSON converts a LeaveType back into its schema struct.
func (f *LeaveTypeFactory) ToJSON(lt leave.LeaveType) LeaveTypeJSON {
	active := lt.IsActive
	return LeaveTypeJSON{
		ID:                lt.ID,
		Name:              lt.Name,
		IsPaid:            lt.IsPaid,
		DeductsFromAnnual: lt.DeductsFromAnnual,
		DocumentRequired:  lt.DocumentRequired,
		RequestUnit:       string(lt.RequestUnit),
		Workflow:          lt.Workflow.String(),
		IsActive:          &active,
	}
}

// Defaults returns the standard leave type catalog used to seed a
// fresh installation.
func (f *LeaveTypeFactory) Defaults() []leave.LeaveType {
	defs := []LeaveTypeJSON{
		{
			ID:                "annual",
			Name:              "Annual Leave",
			IsPaid:            true,
			DeductsFromAnnual: true,
			Workflow:          "HR,MANAGER,CEO",
		},
		{
			ID:               "sick",
			Name:             "Sick Leave",
			IsPaid:           true,
			DocumentRequired: true,
			Workflow:         "HR",
		},
		{
			ID:       "unpaid",
			Name:     "Unpaid Leave",
			Workflow: "HR,MANAGER",
		},
		{
			ID:          "excuse-hourly",
			Name:        "Hourly Excuse Leave",
			IsPaid:      true,
			RequestUnit: string(leave.UnitHour),
			Workflow:    "MANAGER",
		},
	}

	out := make([]leave.LeaveType, 0, len(defs))
	for _, d := range defs {
		lt, err := f.FromJSON(d)
		if err != nil {
			// The catalog above is static; a parse failure is a bug.
			panic(err)
		}
		out = append(out, *lt)
	}
	return out
}
