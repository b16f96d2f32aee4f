package vm

import "sync"

// domainStacks tracks, per goroutine, the domains the executing code has
// explicitly entered. Go offers no reliable mapping from stack frames to
// modules, so the runtime keeps an explicit stack instead; CurrentDomain is
// advisory either way.
var domainStacks struct {
	mu sync.RWMutex
	m  map[uint64][]*ApplicationDomain
}

// EnterDomain pushes d onto the calling goroutine's domain stack and
// returns the function that pops it. Use with defer around any call into
// user code.
func EnterDomain(d *ApplicationDomain) func() {
	gid := goroutineID()
	domainStacks.mu.Lock()
	if domainStacks.m == nil {
		domainStacks.m = make(map[uint64][]*ApplicationDomain)
	}
	domainStacks.m[gid] = append(domainStacks.m[gid], d)
	domainStacks.mu.Unlock()

	return func() {
		domainStacks.mu.Lock()
		stack := domainStacks.m[gid]
		if n := len(stack); n > 0 {
			stack = stack[:n-1]
		}
		if len(stack) == 0 {
			delete(domainStacks.m, gid)
		} else {
			domainStacks.m[gid] = stack
		}
		domainStacks.mu.Unlock()
	}
}

// CurrentDomain inspects the calling goroutine's domain stack and returns
// the domain of the innermost entered code: the closest non-system domain
// if any, else the closest domain, else nil. With nonSystemOnly set the
// system domain is never returned.
func CurrentDomain(nonSystemOnly bool) *ApplicationDomain {
	gid := goroutineID()
	domainStacks.mu.RLock()
	stack := domainStacks.m[gid]
	domainStacks.mu.RUnlock()

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] != nil && !stack[i].IsSystem() {
			return stack[i]
		}
	}
	if nonSystemOnly || len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}
