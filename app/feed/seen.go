package feed

// SeenURLs records every URL selected for processing during one run.
type SeenURLs struct {
	urls map[string]struct{}
}

func NewSeenURLs() *SeenURLs {
	return &SeenURLs{urls: make(map[string]struct{})}
}

// AlreadySeen reports whether url was recorded before and records it if not.
func (s *SeenURLs) AlreadySeen(url string) bool {
	if _, ok := s.urls[url]; ok {
		return true
	}
	s.urls[url] = struct{}{}
	return false
}

func (s *SeenURLs) Len() int {
	return len(s.urls)
}
