package models

// FieldChange records one metric whose value differs between two snapshots.
type FieldChange struct {
	Period Period
	Field  string
	Old    string
	New    string
}

// ChangeReport holds the comparison between the previous and new snapshot.
type ChangeReport struct {
	FirstRun bool
	Changed  bool
	Changes  []FieldChange
	Current  *Snapshot
}
