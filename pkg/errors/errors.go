package errors

import "errors"

// ErrClaimConflict 预约占用冲突：时段已被并发写入者抢占
var ErrClaimConflict = errors.New("该时段已被占用，请重新查询可约时段")
