package menu

// Entry is one permitted navigation item, as served by the protected API.
// Order drives display sorting only; authorization ignores it.
type Entry struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
	Order int    `json:"order"`
}
