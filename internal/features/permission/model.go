package permission

// Set maps module key to permission key to granted. Absent entries mean false.
type Set map[string]map[string]bool

func (s Set) Has(module, perm string) bool {
	return s[module][perm]
}

// Count returns the number of granted permissions.
func (s Set) Count() int {
	n := 0
	for _, perms := range s {
		for _, granted := range perms {
			if granted {
				n++
			}
		}
	}
	return n
}

// Covers reports whether every permission granted in other is granted in s.
func (s Set) Covers(other Set) bool {
	for module, perms := range other {
		for perm, granted := range perms {
			if granted && !s.Has(module, perm) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy holding only granted permissions.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for module, perms := range s {
		for perm, granted := range perms {
			if !granted {
				continue
			}
			if out[module] == nil {
				out[module] = make(map[string]bool, len(perms))
			}
			out[module][perm] = true
		}
	}
	return out
}

// Module is one entry of the permission catalog.
type Module struct {
	Key         string            `json:"key"`
	Label       string            `json:"label"`
	Permissions map[string]string `json:"permissions"` // permission key -> label
	Order       []string          `json:"order"`       // permission keys in display order
}
