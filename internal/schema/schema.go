// Package schema maps spreadsheet columns to named fields.
//
// Every source sheet has a fixed column order that the derivations depend on.
// Instead of scattering column offsets through the code, each sheet is described
// once by a Schema and checked against the sheet header when it is fetched, so a
// reordered sheet fails loudly instead of silently corrupting derived views.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Field is a logical column name.
type Field string

const (
	ID            Field = "id"
	Reference     Field = "reference"
	Date          Field = "date"
	Customer      Field = "customer"
	Category      Field = "category"
	Product       Field = "product"
	UnitPrice     Field = "unit_price"
	Discount      Field = "discount"
	Quantity      Field = "quantity"
	Revenue       Field = "revenue"
	PaymentMethod Field = "payment_method"
	User          Field = "user"
	Cost          Field = "cost"
	UnitCost      Field = "unit_cost"
	Location      Field = "location"
	Supplier      Field = "supplier"
	Description   Field = "description"
	Amount        Field = "amount"
	Name          Field = "name"
	CostPrice     Field = "cost_price"
	SellingPrice  Field = "selling_price"
	ReorderLevel  Field = "reorder_level"
	Timestamp     Field = "timestamp"
	Action        Field = "action"
	OldValue      Field = "old_value"
	NewValue      Field = "new_value"
	Reason        Field = "reason"
	Username      Field = "username"
	PasswordHash  Field = "password_hash"
	Role          Field = "role"
	DisplayName   Field = "display_name"
)

// Logical sheet names. The remote tab name defaults to the same string.
const (
	Sales     = "Sales"
	Purchases = "Purchases"
	Expenses  = "Expenses"
	Products  = "Products"
	AuditLog  = "AuditLog"
	Users     = "Users"
)

// Schema describes one source sheet.
type Schema struct {
	Name    string        // logical name, e.g. "Sales"
	Sheet   string        // remote tab name
	Columns map[Field]int // zero-based column offsets
}

// Width is the number of columns a row must span to hold every mapped field.
func (s Schema) Width() int {
	w := 0
	for _, idx := range s.Columns {
		if idx+1 > w {
			w = idx + 1
		}
	}
	return w
}

// Index returns the column offset of f, or -1 when the sheet does not map it.
func (s Schema) Index(f Field) int {
	idx, ok := s.Columns[f]
	if !ok {
		return -1
	}
	return idx
}

// Validate checks that every mapped column exists in the header row.
func (s Schema) Validate(header []any) error {
	fields := make([]string, 0, len(s.Columns))
	for f := range s.Columns {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		idx := s.Columns[Field(f)]
		if idx < 0 || idx >= len(header) {
			return &Error{Sheet: s.Sheet, Field: Field(f), Index: idx, Width: len(header)}
		}
	}
	return nil
}

// Error reports a mapped column that the fetched sheet does not have.
type Error struct {
	Sheet string
	Field Field
	Index int
	Width int
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: sheet %q maps %s to column %d but header has %d columns",
		e.Sheet, e.Field, e.Index, e.Width)
}

// Registry holds the schema of every known sheet, keyed by lower-cased logical name.
type Registry struct {
	schemas map[string]Schema
}

// Get returns the schema for a logical sheet name.
func (r *Registry) Get(name string) (Schema, bool) {
	s, ok := r.schemas[strings.ToLower(name)]
	return s, ok
}

// MustGet is Get for names compiled into the binary.
func (r *Registry) MustGet(name string) Schema {
	s, ok := r.Get(name)
	if !ok {
		panic("schema: unknown sheet " + name)
	}
	return s
}

// Names lists the logical sheet names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for _, s := range r.schemas {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Default returns the built-in column contracts.
func Default() *Registry {
	defs := []Schema{
		{Name: Sales, Columns: map[Field]int{
			ID: 0, Reference: 1, Date: 2, Customer: 3, Category: 4, Product: 5,
			UnitPrice: 6, Discount: 7, Quantity: 8, Revenue: 9, PaymentMethod: 10, User: 11,
		}},
		{Name: Purchases, Columns: map[Field]int{
			ID: 0, Reference: 1, Date: 2, User: 3, Product: 4, Category: 5,
			Quantity: 6, Cost: 7, UnitCost: 8, Location: 9, Supplier: 10,
		}},
		{Name: Expenses, Columns: map[Field]int{
			ID: 0, Reference: 1, Date: 2, Category: 3, Description: 4, Amount: 5,
			PaymentMethod: 6, User: 7,
		}},
		{Name: Products, Columns: map[Field]int{
			ID: 0, Name: 1, Category: 2, CostPrice: 3, SellingPrice: 4, ReorderLevel: 5, Supplier: 6,
		}},
		{Name: AuditLog, Columns: map[Field]int{
			Timestamp: 0, User: 1, Action: 2, Product: 3, OldValue: 4, NewValue: 5, Reason: 6, Reference: 7,
		}},
		{Name: Users, Columns: map[Field]int{
			Username: 0, PasswordHash: 1, Role: 2, DisplayName: 3,
		}},
	}
	r := &Registry{schemas: make(map[string]Schema, len(defs))}
	for _, s := range defs {
		s.Sheet = s.Name
		r.schemas[strings.ToLower(s.Name)] = s
	}
	return r
}

type override struct {
	Sheet   string         `mapstructure:"sheet"`
	Columns map[string]int `mapstructure:"columns"`
}

// Load returns the default registry with overrides from a YAML/JSON/TOML file
// applied on top. An empty path returns the defaults.
//
//	sheets:
//	  sales:
//	    sheet: "Sales 2024"
//	    columns: { revenue: 12 }
func Load(path string) (*Registry, error) {
	r := Default()
	if path == "" {
		return r, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}

	var overrides map[string]override
	if err := v.UnmarshalKey("sheets", &overrides); err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", path, err)
	}

	for name, o := range overrides {
		key := strings.ToLower(name)
		s, ok := r.schemas[key]
		if !ok {
			return nil, fmt.Errorf("schema: unknown sheet %q in %s", name, path)
		}
		cols := make(map[Field]int, len(s.Columns))
		for f, idx := range s.Columns {
			cols[f] = idx
		}
		for f, idx := range o.Columns {
			// A negative offset unmaps the field; reads then fall back to sentinels.
			if idx < 0 {
				delete(cols, Field(strings.ToLower(f)))
				continue
			}
			cols[Field(strings.ToLower(f))] = idx
		}
		s.Columns = cols
		if o.Sheet != "" {
			s.Sheet = o.Sheet
		}
		r.schemas[key] = s
	}
	return r, nil
}
