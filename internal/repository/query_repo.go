package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

type queryRepository struct {
	db *gorm.DB
}

// NewQueryRepository 创建只读查询仓储
func NewQueryRepository(db *gorm.DB) QueryRepository {
	return &queryRepository{db: db}
}

func (r *queryRepository) ReadOnly(ctx context.Context, query string, maxRows int) (*QueryResult, error) {
	var opts []*sql.TxOptions
	// sqlite 驱动不支持只读事务选项，依赖始终回滚
	if r.db.Dialector.Name() == "mysql" {
		opts = append(opts, &sql.TxOptions{ReadOnly: true})
	}

	tx := r.db.WithContext(ctx).Begin(opts...)
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	rows, err := tx.Raw(query).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Columns: columns, Rows: make([]map[string]*string, 0)}
	for rows.Next() {
		if maxRows > 0 && len(result.Rows) >= maxRows {
			break
		}
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]*string, len(columns))
		for i, column := range columns {
			row[column] = stringify(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func stringify(v interface{}) *string {
	var s string
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		s = string(val)
	case string:
		s = val
	case time.Time:
		s = val.Format(time.RFC3339)
	case int64:
		s = strconv.FormatInt(val, 10)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	default:
		s = fmt.Sprint(val)
	}
	return &s
}
