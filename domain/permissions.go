package domain

// Permission strings are "<entity>:<action>". Routes declare the
// permission they require; roles are granted subsets of this catalog.
const (
	PermAuthManageAPIKeys = "auth:manage_api_keys"

	PermRoleCreate = "role:create"
	PermRoleRead   = "role:read"
	PermRoleUpdate = "role:update"
	PermRoleDelete = "role:delete"

	PermUserCreate     = "user:create"
	PermUserRead       = "user:read"
	PermUserUpdate     = "user:update"
	PermUserDelete     = "user:delete"
	PermUserSuspend    = "user:suspend"
	PermUserAssignRole = "user:assign_role"

	PermClientCreate        = "client:create"
	PermClientRead          = "client:read"
	PermClientUpdate        = "client:update"
	PermClientDelete        = "client:delete"
	PermClientApprove       = "client:approve"
	PermClientResetPassword = "client:reset_password"
	PermClientResetPIN      = "client:reset_pin"

	PermPOSCreate = "pos:create"
	PermPOSRead   = "pos:read"
	PermPOSUpdate = "pos:update"
	PermPOSDelete = "pos:delete"
	PermPOSReport = "pos:report"

	PermPOSUserCreate = "pos_user:create"
	PermPOSUserRead   = "pos_user:read"
	PermPOSUserUpdate = "pos_user:update"
	PermPOSUserDelete = "pos_user:delete"

	PermInventoryIncrease = "inventory:increase"
	PermInventoryDecrease = "inventory:decrease"
	PermInventoryTransfer = "inventory:transfer"

	PermSaleCreate  = "sale:create"
	PermSaleRead    = "sale:read"
	PermSaleCancel  = "sale:cancel"
	PermSaleProcess = "sale:process"
	PermSaleReturn  = "sale:return"

	PermOrderCreate = "order:create"
	PermOrderRead   = "order:read"
	PermOrderUpdate = "order:update"
	PermOrderCancel = "order:cancel"
	PermOrderReturn = "order:return"

	PermProcurementCreate  = "procurement:create"
	PermProcurementRead    = "procurement:read"
	PermProcurementCancel  = "procurement:cancel"
	PermProcurementReceive = "procurement:receive"

	PermProviderCreate = "provider:create"
	PermProviderRead   = "provider:read"
	PermProviderUpdate = "provider:update"
	PermProviderDelete = "provider:delete"

	PermReportSales     = "report:sales_view"
	PermReportExpense   = "report:expense_view"
	PermReportInventory = "report:inventory_view"

	PermAuditLogsRead = "audit_logs:read"

	PermSystemAdmin = "system:admin"
)

var permissionCatalog = []string{
	PermAuthManageAPIKeys,
	PermRoleCreate, PermRoleRead, PermRoleUpdate, PermRoleDelete,
	PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
	PermUserSuspend, PermUserAssignRole,
	PermClientCreate, PermClientRead, PermClientUpdate, PermClientDelete,
	PermClientApprove, PermClientResetPassword, PermClientResetPIN,
	PermPOSCreate, PermPOSRead, PermPOSUpdate, PermPOSDelete, PermPOSReport,
	PermPOSUserCreate, PermPOSUserRead, PermPOSUserUpdate, PermPOSUserDelete,
	PermInventoryIncrease, PermInventoryDecrease, PermInventoryTransfer,
	PermSaleCreate, PermSaleRead, PermSaleCancel, PermSaleProcess, PermSaleReturn,
	PermOrderCreate, PermOrderRead, PermOrderUpdate, PermOrderCancel, PermOrderReturn,
	PermProcurementCreate, PermProcurementRead, PermProcurementCancel, PermProcurementReceive,
	PermProviderCreate, PermProviderRead, PermProviderUpdate, PermProviderDelete,
	PermReportSales, PermReportExpense, PermReportInventory,
	PermAuditLogsRead,
	PermSystemAdmin,
}

var permissionSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(permissionCatalog))
	for _, p := range permissionCatalog {
		m[p] = struct{}{}
	}
	return m
}()

// AllPermissions returns a copy of the catalog.
func AllPermissions() []string {
	out := make([]string, len(permissionCatalog))
	copy(out, permissionCatalog)
	return out
}

// KnownPermission reports whether the string is part of the catalog.
func KnownPermission(p string) bool {
	_, ok := permissionSet[p]
	return ok
}
