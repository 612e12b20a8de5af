package cache

// ThicknessKeyOpts are the query options that change a thickness result.
type ThicknessKeyOpts struct {
	StartPages int    `json:"start_pages"`
	MaxPages   int    `json:"max_pages"`
	Engine     string `json:"engine"`
}

// EmbeddingKeyOpts are the query options that change a fixed page count
// result.
type EmbeddingKeyOpts struct {
	Pages  int      `json:"pages"`
	Spines []string `json:"spines"`
	Engine string   `json:"engine"`
}

// Keyer derives cache keys. graphHash identifies the graph, normally the
// [Hash] of its JSON encoding.
type Keyer interface {
	ThicknessKey(graphHash string, opts ThicknessKeyOpts) string
	EmbeddingKey(graphHash string, opts EmbeddingKeyOpts) string
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ThicknessKey(graphHash string, opts ThicknessKeyOpts) string {
	return hashKey("thickness", graphHash, opts)
}

func (DefaultKeyer) EmbeddingKey(graphHash string, opts EmbeddingKeyOpts) string {
	return hashKey("embedding", graphHash, opts)
}

// ScopedKeyer prefixes every key of an inner Keyer, so several deployments
// can share one redis without colliding.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses the
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ThicknessKey(graphHash string, opts ThicknessKeyOpts) string {
	return k.prefix + k.inner.ThicknessKey(graphHash, opts)
}

func (k *ScopedKeyer) EmbeddingKey(graphHash string, opts EmbeddingKeyOpts) string {
	return k.prefix + k.inner.EmbeddingKey(graphHash, opts)
}
