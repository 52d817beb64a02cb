package catalog

import (
	"fmt"
	"sync/atomic"
)

// ResourceKind identifies the currency a cost line is expressed in.
type ResourceKind string

const (
	ResourceBlood ResourceKind = "blood"
	ResourceBones ResourceKind = "bones"
)

// CostLine is a single (resource, amount) entry of a template's cost.
type CostLine struct {
	Resource ResourceKind
	Amount   int
}

// CreatureClass tags a template with its creature family. Classes are plain
// data; behavior never branches on them.
type CreatureClass string

const (
	ClassSquirrel CreatureClass = "squirrel"
	ClassAvian    CreatureClass = "avian"
	ClassReptile  CreatureClass = "reptile"
	ClassHoofed   CreatureClass = "hoofed"
	ClassCanid    CreatureClass = "canid"
)

// Template is an immutable card definition shared by reference. Instances
// copy its stats at mint time and never write back.
type Template struct {
	Name  string
	HP    int
	ATK   int
	Tags  []string
	Class CreatureClass
	Cost  []CostLine
}

// TotalCost sums the amounts across all cost lines.
func (t *Template) TotalCost() int {
	total := 0
	for _, line := range t.Cost {
		total += line.Amount
	}
	return total
}

// Free reports whether the template has no cost lines.
func (t *Template) Free() bool {
	return len(t.Cost) == 0
}

// SquirrelName is the fixed starter creature handed out by the
// "squirrels" bonus draw.
const SquirrelName = "Squirrel"

// Catalog is the immutable template table. It is populated once at
// construction and read concurrently without locking afterwards.
type Catalog struct {
	byName []*Template
	index  map[string]*Template
}

// New builds a catalog from the given templates. Order is preserved for
// random draws so a seeded source stays deterministic.
func New(templates []*Template) (*Catalog, error) {
	c := &Catalog{
		byName: make([]*Template, 0, len(templates)),
		index:  make(map[string]*Template, len(templates)),
	}
	for _, tpl := range templates {
		if tpl.Name == "" {
			return nil, fmt.Errorf("template with empty name")
		}
		if _, dup := c.index[tpl.Name]; dup {
			return nil, fmt.Errorf("duplicate template %q", tpl.Name)
		}
		c.byName = append(c.byName, tpl)
		c.index[tpl.Name] = tpl
	}
	if _, ok := c.index[SquirrelName]; !ok {
		return nil, fmt.Errorf("catalog is missing the %s starter template", SquirrelName)
	}
	return c, nil
}

// Starter returns the default catalog used by the server.
func Starter() *Catalog {
	c, err := New([]*Template{
		{Name: SquirrelName, HP: 1, ATK: 0, Class: ClassSquirrel},
		{Name: "Hawk", HP: 1, ATK: 1, Tags: []string{"flying"}, Class: ClassAvian},
		{Name: "Bullfrog", HP: 2, ATK: 1, Tags: []string{"mighty_leap"}, Class: ClassReptile,
			Cost: []CostLine{{Resource: ResourceBlood, Amount: 1}}},
		{Name: "Black Goat", HP: 1, ATK: 0, Tags: []string{"worthy_sacrifice"}, Class: ClassHoofed,
			Cost: []CostLine{{Resource: ResourceBlood, Amount: 1}}},
		{Name: "Peregrine", HP: 1, ATK: 1, Tags: []string{"flying", "ambush"}, Class: ClassAvian,
			Cost: []CostLine{{Resource: ResourceBlood, Amount: 1}}},
		{Name: "Coyote", HP: 2, ATK: 1, Class: ClassCanid,
			Cost: []CostLine{{Resource: ResourceBones, Amount: 2}}},
	})
	if err != nil {
		panic(err) // the starter table is fixed at compile time
	}
	return c
}

// Lookup returns the template with the given name.
func (c *Catalog) Lookup(name string) (*Template, bool) {
	tpl, ok := c.index[name]
	return tpl, ok
}

// Len returns the number of templates in the table.
func (c *Catalog) Len() int {
	return len(c.byName)
}

// At returns the template at the given table position.
func (c *Catalog) At(i int) *Template {
	return c.byName[i]
}

// Minter stamps session-unique identities onto template copies. Ids are a
// monotonic counter starting at 1 and are never reused within a session.
type Minter struct {
	catalog *Catalog
	nextID  atomic.Int64
}

// NewMinter creates a minter backed by the given catalog.
func NewMinter(c *Catalog) *Minter {
	return &Minter{catalog: c}
}

// Instance is a minted card. HP is mutable; ATK is fixed for the
// instance's lifetime.
type Instance struct {
	ID       int
	Template *Template
	OwnerID  string
	HP       int
	ATK      int
}

// Mint looks up a template by name and returns a fresh instance owned by
// ownerID. The returned instance carries the next session-unique id.
func (m *Minter) Mint(templateName, ownerID string) (*Instance, error) {
	tpl, ok := m.catalog.Lookup(templateName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateName)
	}
	return &Instance{
		ID:       int(m.nextID.Add(1)),
		Template: tpl,
		OwnerID:  ownerID,
		HP:       tpl.HP,
		ATK:      tpl.ATK,
	}, nil
}

// MintAt mints the template at the given table position. Used for random
// draws where the caller already picked an index.
func (m *Minter) MintAt(i int, ownerID string) (*Instance, error) {
	if i < 0 || i >= m.catalog.Len() {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownTemplate, i)
	}
	return m.Mint(m.catalog.At(i).Name, ownerID)
}
