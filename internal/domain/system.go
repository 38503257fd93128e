package domain

import (
	"time"
)

// SysOprLog operator action log
type SysOprLog struct {
	ID        int64     `json:"id,string"`
	OprID     int64     `gorm:"index" json:"opr_id,string"`
	OprName   string    `json:"opr_name"`
	OprIp     string    `json:"opr_ip"`
	OptAction string    `gorm:"index" json:"opt_action"`
	OptDesc   string    `json:"opt_desc"`
	OptTime   time.Time `gorm:"index" json:"opt_time"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}
