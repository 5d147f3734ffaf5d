package model

import "fmt"

// ColumnMapping 逻辑列到表头标签的映射
type ColumnMapping struct {
	EmployeeID      string `json:"employeeId"`      // 工号
	ProjectID       string `json:"projectId"`       // 项目/费用所属中心
	ProjectCategory string `json:"projectCategory"` // 项目/费用类别
	ProjectHours    string `json:"projectHours"`    // 工时
}

// Role 逻辑列名
type Role string

const (
	RoleEmployeeID      Role = "employee_id"
	RoleProjectID       Role = "project_id"
	RoleProjectCategory Role = "project_category"
	RoleProjectHours    Role = "project_hours"
)

// Roles 按固定顺序返回 (逻辑列, 标签) 对
func (m ColumnMapping) Roles() []RoleLabel {
	return []RoleLabel{
		{Role: RoleEmployeeID, Label: m.EmployeeID},
		{Role: RoleProjectID, Label: m.ProjectID},
		{Role: RoleProjectCategory, Label: m.ProjectCategory},
		{Role: RoleProjectHours, Label: m.ProjectHours},
	}
}

// RoleLabel 逻辑列与其标签
type RoleLabel struct {
	Role  Role
	Label string
}

// ZeroHoursPolicy 参考组总工时为 0 时的处理策略
type ZeroHoursPolicy string

const (
	// ZeroHoursPassThrough 总工时为 0 的组按未匹配处理，原样输出源行
	ZeroHoursPassThrough ZeroHoursPolicy = "passthrough"
	// ZeroHoursReject 参考表中任意一行工时为 0 即终止本次运行
	ZeroHoursReject ZeroHoursPolicy = "reject"
)

// ParseZeroHoursPolicy 解析策略，空字符串返回默认策略
func ParseZeroHoursPolicy(s string) (ZeroHoursPolicy, error) {
	switch ZeroHoursPolicy(s) {
	case "", ZeroHoursPassThrough:
		return ZeroHoursPassThrough, nil
	case ZeroHoursReject:
		return ZeroHoursReject, nil
	}
	return "", fmt.Errorf("unknown zero hours policy %q (want %q or %q)", s, ZeroHoursPassThrough, ZeroHoursReject)
}
