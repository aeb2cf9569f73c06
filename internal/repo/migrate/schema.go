// Package migrate declares the relational schema of the case store.
package migrate

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Document columns use plain json so the stored text is returned byte for byte.
var documentType = map[string]string{"postgres": "json"}

var (
	// CasesColumns holds the columns for the "cases" table.
	CasesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "lab_id", Type: field.TypeString, Size: 50},
		{Name: "doctor_id", Type: field.TypeString, Size: 50},
		{Name: "product_id", Type: field.TypeString, Size: 50},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"pending", "in_progress", "completed", "cancelled", "on_hold"}, Default: "pending"},
		{Name: "case_name", Type: field.TypeString, Nullable: true, Size: 255},
		{Name: "description", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "priority", Type: field.TypeString, Size: 20, Default: "medium"},
		{Name: "created_by", Type: field.TypeString, Nullable: true, Size: 50},
		{Name: "assigned_to", Type: field.TypeString, Nullable: true, Size: 50},
		{Name: "case_type", Type: field.TypeString, Nullable: true, Size: 50},
		{Name: "due_date", Type: field.TypeTime, Nullable: true, SchemaType: map[string]string{"postgres": "date"}},
		{Name: "rush_order", Type: field.TypeBool, Default: false},
		{Name: "special_instructions", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "patient_info", Type: field.TypeJSON, Nullable: true, SchemaType: documentType},
		{Name: "fixed_prosthetic_details", Type: field.TypeJSON, Nullable: true, SchemaType: documentType},
		{Name: "denture_details", Type: field.TypeJSON, Nullable: true, SchemaType: documentType},
		{Name: "night_guard_details", Type: field.TypeJSON, Nullable: true, SchemaType: documentType},
		{Name: "implant_details", Type: field.TypeJSON, Nullable: true, SchemaType: documentType},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// CasesTable holds the schema information for the "cases" table.
	CasesTable = &schema.Table{
		Name:       "cases",
		Columns:    CasesColumns,
		PrimaryKey: []*schema.Column{CasesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "case_lab_id",
				Unique:  false,
				Columns: []*schema.Column{CasesColumns[1]},
			},
			{
				Name:    "case_doctor_id",
				Unique:  false,
				Columns: []*schema.Column{CasesColumns[2]},
			},
			{
				Name:    "case_product_id",
				Unique:  false,
				Columns: []*schema.Column{CasesColumns[3]},
			},
			{
				Name:    "case_lab_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{CasesColumns[1], CasesColumns[19]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		CasesTable,
	}
)
