package memory

import "time"

// Memory is the per-agent memory facade the agent runtime depends on:
// a fast short-term scratchpad plus a semantically searchable long-term
// episodic history.
type Memory struct {
	Short *ShortTerm
	Long  *LongTerm
}

// New combines a short-term and long-term store into one facade.
func New(long *LongTerm, shortTTL time.Duration) *Memory {
	return &Memory{Short: NewShortTerm(shortTTL), Long: long}
}
