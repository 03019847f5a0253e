package cache

// Key layout shared by the components that mirror state here.
const (
	PrefixSynonyms     = "syn:"
	PrefixAntonyms     = "ant:"
	PrefixAssociations = "assoc:"
	PrefixDefinitions  = "def:"

	KeyConnections    = "connections:snapshot"
	KeyPatterns       = "patterns:snapshot"
	KeyCursor         = "scheduler:cursor"
	KeySchedulerState = "scheduler:state"
	KeyActivityLog    = "scheduler:activity"
)
