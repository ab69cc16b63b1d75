package bridge

// Scope collects release functions and runs them once, newest first.
type Scope struct {
	releases []func()
	closed   bool
}

// Own registers release to run on Close. After Close, release runs
// immediately so a late acquisition is never leaked.
func (s *Scope) Own(release func()) {
	if release == nil {
		return
	}
	if s.closed {
		release()
		return
	}
	s.releases = append(s.releases, release)
}

// Close runs every registered release in reverse order. Later calls do
// nothing.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

// Closed reports whether Close has run.
func (s *Scope) Closed() bool { return s.closed }

// Len returns the number of pending releases.
func (s *Scope) Len() int { return len(s.releases) }
