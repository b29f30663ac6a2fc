package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// StoreError 数据访问层的类型化错误
// 保留操作名与表名，Unwrap 后仍可用 errors.Is 判断 gorm.ErrRecordNotFound 等底层错误
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Wrap 将底层错误包装为 StoreError；err 为 nil 时返回 nil
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Table: table, Err: err}
}

// IsStoreError 判断错误链中是否包含 StoreError
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
