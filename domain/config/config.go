package config

// DomainConfig centralizes editor business rules and limits
// Components receive it at construction so tests can tune behavior
type DomainConfig struct {
	// MaxNodesPerGraph caps the canonical node collection
	MaxNodesPerGraph int

	// MaxEdgesPerGraph caps the canonical edge collection
	MaxEdgesPerGraph int

	// HistoryLimit caps the number of undo transactions kept
	HistoryLimit int

	// PasteOffsetX and PasteOffsetY displace pasted nodes from their originals
	PasteOffsetX float64
	PasteOffsetY float64

	// MinTimerIntervalMs is the lowest interval a timer node may be configured with
	MinTimerIntervalMs float64
}

// DefaultDomainConfig returns the standard production configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerGraph:   500,
		MaxEdgesPerGraph:   2000,
		HistoryLimit:       200,
		PasteOffsetX:       40,
		PasteOffsetY:       40,
		MinTimerIntervalMs: 10,
	}
}
