package signal

import (
	"sync"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// RuleRegistry holds named rules.
type RuleRegistry interface {
	RegisterRule(rule Rule) error
	GetRule(name types.RuleType) (Rule, error)
	ListRules() []types.RuleType
	RemoveRule(name types.RuleType) error
}

// RuleRegistryV1 keeps rules in registration order.
type RuleRegistryV1 struct {
	rules map[types.RuleType]Rule
	order []types.RuleType
	mu    sync.RWMutex
}

// NewRuleRegistry creates an empty rule registry.
func NewRuleRegistry() RuleRegistry {
	return &RuleRegistryV1{
		rules: make(map[types.RuleType]Rule),
		order: []types.RuleType{},
		mu:    sync.RWMutex{},
	}
}

// RegisterRule adds a rule to the registry.
func (r *RuleRegistryV1) RegisterRule(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := rule.Name()
	if _, exists := r.rules[name]; exists {
		return errors.Newf(errors.ErrCodeInvalidParameter, "rule with name %s already registered", name)
	}

	r.rules[name] = rule
	r.order = append(r.order, name)

	return nil
}

// GetRule retrieves a rule by name.
func (r *RuleRegistryV1) GetRule(name types.RuleType) (Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, exists := r.rules[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "rule with name %s not found", name)
	}

	return rule, nil
}

// ListRules returns the registered rule names in registration order.
func (r *RuleRegistryV1) ListRules() []types.RuleType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.RuleType, len(r.order))
	copy(names, r.order)

	return names
}

// RemoveRule removes a rule from the registry.
func (r *RuleRegistryV1) RemoveRule(name types.RuleType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[name]; !exists {
		return errors.Newf(errors.ErrCodeInvalidParameter, "rule with name %s not found", name)
	}

	delete(r.rules, name)

	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}

	return nil
}
