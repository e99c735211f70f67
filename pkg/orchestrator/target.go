package orchestrator

// TargetKind identifies which class of database a migration target refers to.
type TargetKind int

//go:generate go run github.com/dmarkham/enumer -type TargetKind -trimprefix TargetKind -transform lower -output targetkind.gen.go

const (
	TargetKindMaster TargetKind = iota
	TargetKindTenant
)

// TargetStatus is the last known migration state of a target.
type TargetStatus string

const (
	StatusPending TargetStatus = "pending"
	StatusApplied TargetStatus = "applied"
	StatusFailed  TargetStatus = "failed"
)

// MigrationTarget identifies one database to bring to head state. Targets
// are created per invocation and discarded when the process exits; the
// external systems keep the durable record.
type MigrationTarget struct {
	Kind TargetKind

	// ConnectionRef is a database URL for a master target, or an
	// organization id for a tenant target.
	ConnectionRef string

	LastKnownStatus TargetStatus
}

// MasterTarget returns a pending target for the master database.
func MasterTarget(dbURL string) MigrationTarget {
	return MigrationTarget{
		Kind:            TargetKindMaster,
		ConnectionRef:   dbURL,
		LastKnownStatus: StatusPending,
	}
}

// TenantTarget returns a pending target for one organization's database.
func TenantTarget(orgID string) MigrationTarget {
	return MigrationTarget{
		Kind:            TargetKindTenant,
		ConnectionRef:   orgID,
		LastKnownStatus: StatusPending,
	}
}

func (t *MigrationTarget) MarkApplied() {
	t.LastKnownStatus = StatusApplied
}

func (t *MigrationTarget) MarkFailed() {
	t.LastKnownStatus = StatusFailed
}
