package model

import (
	"errors"
)

// ErrCASConflict 乐观并发更新冲突（读取后的值已被其他操作修改）
var ErrCASConflict = errors.New("compare-and-swap conflict")

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")
