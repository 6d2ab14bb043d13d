// Package rbac maps roles to permissions and guards routes with them.
package rbac

import "strings"

// Checker answers permission queries against a compiled role policy.
// Grants are exact ("report:generate"), prefix wildcards ("assessment:*")
// or "*" for everything.
type Checker struct {
	exact    map[string]map[string]bool
	prefixes map[string][]string
	all      map[string]bool
}

// NewChecker compiles rp, or RolePermissions when rp is nil.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	c := &Checker{
		exact:    make(map[string]map[string]bool, len(rp)),
		prefixes: make(map[string][]string),
		all:      make(map[string]bool),
	}
	for role, grants := range rp {
		c.exact[role] = make(map[string]bool, len(grants))
		for _, g := range grants {
			switch {
			case g == "*":
				c.all[role] = true
			case strings.HasSuffix(g, "*"):
				c.prefixes[role] = append(c.prefixes[role], strings.TrimSuffix(g, "*"))
			default:
				c.exact[role][g] = true
			}
		}
	}
	return c
}

func (c *Checker) Has(role, perm string) bool {
	if c.all[role] || c.exact[role][perm] {
		return true
	}
	for _, p := range c.prefixes[role] {
		if strings.HasPrefix(perm, p) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func (c *Checker) All(role string, perms ...string) bool {
	for _, p := range perms {
		if !c.Has(role, p) {
			return false
		}
	}
	return true
}
