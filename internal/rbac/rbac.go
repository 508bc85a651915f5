package rbac

import "finepharma/internal/domain/model"

type Action string

const (
	ActionCreateProduct     Action = "createProduct"
	ActionUpdateProduct     Action = "updateProduct"
	ActionDeleteProduct     Action = "deleteProduct"
	ActionUpdateStock       Action = "updateStock"
	ActionUpdateOrderStatus Action = "updateOrderStatus"
	ActionGenerateInvoice   Action = "generateInvoice"
	ActionUpdateUserRole    Action = "updateUserRole"
	ActionUpdateUserStatus  Action = "updateUserStatus"
	ActionViewAllOrders     Action = "viewAllOrders"
	ActionViewAllInvoices   Action = "viewAllInvoices"
	ActionViewUsers         Action = "viewUsers"
)

// 静的な許可表。ここにない組み合わせは全部拒否。
var permissions = map[Action][]model.Role{
	ActionCreateProduct:     {model.RoleAdmin},
	ActionUpdateProduct:     {model.RoleAdmin},
	ActionDeleteProduct:     {model.RoleAdmin},
	ActionUpdateStock:       {model.RoleAdmin, model.RoleStaff},
	ActionUpdateOrderStatus: {model.RoleAdmin, model.RoleStaff},
	ActionGenerateInvoice:   {model.RoleAdmin, model.RoleStaff},
	ActionUpdateUserRole:    {model.RoleAdmin},
	ActionUpdateUserStatus:  {model.RoleAdmin},
	ActionViewAllOrders:     {model.RoleAdmin, model.RoleStaff},
	ActionViewAllInvoices:   {model.RoleAdmin, model.RoleStaff},
	ActionViewUsers:         {model.RoleAdmin},
}

func Can(role model.Role, action Action) bool {
	for _, r := range permissions[action] {
		if r == role {
			return true
		}
	}
	return false
}
