package playbook

import (
	"errors"
	"fmt"

	"github.com/wonny/argus/v1/internal/contracts"
)

// ErrPlaybookMismatch is returned when a playbook is applied to an
// asset outside its family. This is a hard guard: a crypto playbook
// must never grade a gold setup.
var ErrPlaybookMismatch = errors.New("playbook family does not match asset class")

// ErrUnknownPlaybook is returned for IDs the registry has never seen.
var ErrUnknownPlaybook = errors.New("unknown playbook id")

// resolution pairs one predicate with the playbook it selects.
type resolution struct {
	match    func(contracts.Asset) bool
	playbook *Playbook
}

// Registry holds the loaded playbooks and resolves one per asset
// through an ordered predicate list: asset-pinned entries first, then
// family matches, generic last.
type Registry struct {
	playbooks []*Playbook
	order     []resolution
}

// NewRegistry builds a registry from the builtin playbooks with the
// default family resolution order gold > index > crypto > fx > generic.
func NewRegistry() *Registry {
	r := &Registry{playbooks: builtinPlaybooks()}
	for _, p := range r.playbooks {
		if p.Family == contracts.ClassGeneric {
			continue
		}
		pb := p
		r.order = append(r.order, resolution{
			match:    func(a contracts.Asset) bool { return a.Class == pb.Family },
			playbook: pb,
		})
	}
	for _, p := range r.playbooks {
		if p.Family != contracts.ClassGeneric {
			continue
		}
		pb := p
		r.order = append(r.order, resolution{
			match:    func(contracts.Asset) bool { return true },
			playbook: pb,
		})
	}
	return r
}

// RegisterForAsset pins a playbook to one asset (matched by ID or
// symbol), resolved ahead of every family entry. The pinned playbook
// still has to clear the family guard at resolve time.
func (r *Registry) RegisterForAsset(idOrSymbol string, p *Playbook) {
	if _, err := r.Get(p.ID); err != nil {
		r.playbooks = append(r.playbooks, p)
	}
	res := resolution{
		match:    func(a contracts.Asset) bool { return a.ID == idOrSymbol || a.Symbol == idOrSymbol },
		playbook: p,
	}
	r.order = append([]resolution{res}, r.order...)
}

// Resolve walks the ordered resolution list and returns the first
// match. The family guard runs on the resolved result so a miswired
// registry fails loudly instead of silently grading with the wrong
// chain.
func (r *Registry) Resolve(asset contracts.Asset) (*Playbook, error) {
	for _, res := range r.order {
		if !res.match(asset) {
			continue
		}
		if err := r.CheckCompatible(res.playbook.ID, asset.Class); err != nil {
			return nil, err
		}
		return res.playbook, nil
	}
	return nil, fmt.Errorf("%w: no playbook for class %s", ErrUnknownPlaybook, asset.Class)
}

// Get returns the playbook with the given ID.
func (r *Registry) Get(id string) (*Playbook, error) {
	for _, p := range r.playbooks {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPlaybook, id)
}

// CheckCompatible enforces the family guard for an explicit playbook
// ID, e.g. when re-grading persisted setups. Generic is compatible
// with every class.
func (r *Registry) CheckCompatible(id string, class contracts.AssetClass) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	if p.Family == contracts.ClassGeneric || p.Family == class {
		return nil
	}
	return fmt.Errorf("%w: playbook %s (family %s) vs asset class %s",
		ErrPlaybookMismatch, id, p.Family, class)
}

// All returns every registered playbook.
func (r *Registry) All() []*Playbook {
	out := make([]*Playbook, len(r.playbooks))
	copy(out, r.playbooks)
	return out
}
