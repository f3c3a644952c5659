package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errUserNotFound   = "user not found"
	errRoleNotFound   = "role not found"
	errEntryNotFound  = "file entry not found"
	errFolderNotFound = "folder not found"
	errShareNotFound  = "share not found"
	errLinkNotFound   = "shared link not found"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedOpenMigrationsFmt  = "failed to open migrations: %w"
	errFailedInitMigrationsFmt  = "failed to init migrations: %w"
	errFailedApplyMigrationsFmt = "failed to apply migrations: %w"

	errFailedStartTransactionFmt  = "failed to start transaction: %w"
	errFailedCommitTransactionFmt = "failed to commit transaction: %w"

	errFailedCreateUserFmt = "failed to create user: %w"
	errFailedGetUserFmt    = "failed to get user: %w"
	errFailedListUsersFmt  = "failed to list users: %w"
	errFailedScanUserFmt   = "failed to scan user: %w"
	errIterateUsersFmt     = "error iterating users: %w"
	errFailedUpdateUserFmt = "failed to update user: %w"
	errFailedCountUsersFmt = "failed to count users: %w"
	errFailedEnsureRoleFmt = "failed to ensure role: %w"
	errFailedAssignRoleFmt = "failed to assign role: %w"
	errFailedRemoveRoleFmt = "failed to remove role: %w"

	errFailedCreateEntryFmt = "failed to create file entry: %w"
	errFailedGetEntryFmt    = "failed to get file entry: %w"
	errFailedListEntriesFmt = "failed to list file entries: %w"
	errFailedScanEntryFmt   = "failed to scan file entry: %w"
	errFailedUpdateEntryFmt = "failed to update file entry: %w"
	errFailedDeleteEntryFmt = "failed to delete file entry: %w"

	errFailedCreateShareFmt = "failed to create share: %w"
	errFailedGetShareFmt    = "failed to get share: %w"
	errFailedListSharesFmt  = "failed to list shares: %w"
	errFailedUpdateShareFmt = "failed to update share: %w"
	errFailedCreateLinkFmt  = "failed to create shared link: %w"
	errFailedGetLinkFmt     = "failed to get shared link: %w"

	errFailedInsertAuditFmt = "failed to insert audit record: %w"
	errFailedQueryAuditFmt  = "failed to query audit records: %w"
	errFailedScanAuditFmt   = "failed to scan audit record: %w"
	errFailedDeleteAuditFmt = "failed to delete audit records: %w"
	errFailedAggregateFmt   = "failed to aggregate %s: %w"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedStartTransaction     = func(err error) error { return fmt.Errorf(errFailedStartTransactionFmt, err) }
	errFailedCommitTransaction    = func(err error) error { return fmt.Errorf(errFailedCommitTransactionFmt, err) }

	errFailedCreateUser = func(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
	errFailedGetUser    = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedListUsers  = func(err error) error { return fmt.Errorf(errFailedListUsersFmt, err) }
	errFailedScanUser   = func(err error) error { return fmt.Errorf(errFailedScanUserFmt, err) }
	errIterateUsers     = func(err error) error { return fmt.Errorf(errIterateUsersFmt, err) }
	errFailedUpdateUser = func(err error) error { return fmt.Errorf(errFailedUpdateUserFmt, err) }
	errFailedCountUsers = func(err error) error { return fmt.Errorf(errFailedCountUsersFmt, err) }
	errFailedEnsureRole = func(err error) error { return fmt.Errorf(errFailedEnsureRoleFmt, err) }
	errFailedAssignRole = func(err error) error { return fmt.Errorf(errFailedAssignRoleFmt, err) }
	errFailedRemoveRole = func(err error) error { return fmt.Errorf(errFailedRemoveRoleFmt, err) }

	errFailedCreateEntry = func(err error) error { return fmt.Errorf(errFailedCreateEntryFmt, err) }
	errFailedGetEntry    = func(err error) error { return fmt.Errorf(errFailedGetEntryFmt, err) }
	errFailedListEntries = func(err error) error { return fmt.Errorf(errFailedListEntriesFmt, err) }
	errFailedScanEntry   = func(err error) error { return fmt.Errorf(errFailedScanEntryFmt, err) }
	errFailedUpdateEntry = func(err error) error { return fmt.Errorf(errFailedUpdateEntryFmt, err) }
	errFailedDeleteEntry = func(err error) error { return fmt.Errorf(errFailedDeleteEntryFmt, err) }

	errFailedCreateShare = func(err error) error { return fmt.Errorf(errFailedCreateShareFmt, err) }
	errFailedGetShare    = func(err error) error { return fmt.Errorf(errFailedGetShareFmt, err) }
	errFailedListShares  = func(err error) error { return fmt.Errorf(errFailedListSharesFmt, err) }
	errFailedUpdateShare = func(err error) error { return fmt.Errorf(errFailedUpdateShareFmt, err) }
	errFailedCreateLink  = func(err error) error { return fmt.Errorf(errFailedCreateLinkFmt, err) }
	errFailedGetLink     = func(err error) error { return fmt.Errorf(errFailedGetLinkFmt, err) }

	errFailedInsertAudit = func(err error) error { return fmt.Errorf(errFailedInsertAuditFmt, err) }
	errFailedQueryAudit  = func(err error) error { return fmt.Errorf(errFailedQueryAuditFmt, err) }
	errFailedScanAudit   = func(err error) error { return fmt.Errorf(errFailedScanAuditFmt, err) }
	errFailedDeleteAudit = func(err error) error { return fmt.Errorf(errFailedDeleteAuditFmt, err) }

	errFailedAggregate = func(what string, err error) error { return fmt.Errorf(errFailedAggregateFmt, what, err) }
)
