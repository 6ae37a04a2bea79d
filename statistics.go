package main

type Statistics struct {
	RestartCount     uint64
	DecisionCount    uint64
	PropagationCount uint64
	ConflictCount    uint64
	NumLearnts       uint64
	NumClauses       uint64
}

func NewStatistics() *Statistics {
	return &Statistics{}
}
