package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// Расширенные коды SQLite (https://www.sqlite.org/rescode.html).
const (
	sqliteConstraint           = 19
	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintUnique
	constraintForeignKey
	constraintCheck
	constraintOther
)

// constraintOf определяет, какое ограничение схемы нарушено.
// Драйвер может вернуть как расширенный, так и первичный код, поэтому
// при первичном коде вид ограничения уточняется по тексту ошибки.
func constraintOf(err error) constraintKind {
	if err == nil {
		return constraintNone
	}

	var coded interface{ Code() int }
	hasCode := errors.As(err, &coded)
	if hasCode {
		switch coded.Code() {
		case sqliteConstraintPrimaryKey, sqliteConstraintUnique:
			return constraintUnique
		case sqliteConstraintForeignKey:
			return constraintForeignKey
		case sqliteConstraintCheck:
			return constraintCheck
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return constraintUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return constraintForeignKey
	case strings.Contains(msg, "CHECK constraint failed"):
		return constraintCheck
	}

	if hasCode && coded.Code()&0xff == sqliteConstraint {
		return constraintOther
	}
	return constraintNone
}

func queryError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrQuery, op, err)
}

func rowMappingError(op string, err error) error {
	if errors.Is(err, domain.ErrRowMapping) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrRowMapping, op, err)
}
