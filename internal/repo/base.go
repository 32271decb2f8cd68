package repo

import (
	"context"
	"errors"

	"github.com/angelmondragon/lumina-backend/pkg/db"
	"gorm.io/gorm"
)

// ErrConflict reports an insert rejected by a unique constraint.
var ErrConflict = errors.New("record already exists")

// Base carries the GORM connection shared by SQL-backed stores.
type Base struct {
	conn *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB returns the connection bound to ctx (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}

// Insert creates record, mapping unique violations to ErrConflict.
func (b Base) Insert(ctx context.Context, record any) error {
	if err := b.DB(ctx).Create(record).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrConflict
		}
		return err
	}
	return nil
}

// Count returns the number of rows held for model.
func (b Base) Count(ctx context.Context, model any) (int64, error) {
	var count int64
	if err := b.DB(ctx).Model(model).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
