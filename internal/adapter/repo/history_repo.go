package repo

import (
	"context"
	"encoding/json"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/sqlinline"
)

// HistoryRepositoryPG stores generation history in ai_history.
type HistoryRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewHistoryRepository creates a new HistoryRepositoryPG.
func NewHistoryRepository(sql infra.SQLExecutor) *HistoryRepositoryPG {
	return &HistoryRepositoryPG{sql: sql}
}

// Insert appends one history entry.
func (r *HistoryRepositoryPG) Insert(ctx context.Context, item domain.HistoryItem) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertHistory,
		item.UserID,
		string(item.ModuleType),
		jsonOrNil(item.InputData),
		jsonOrNil(item.OutputData),
	)
	return err
}

// ListRecent returns up to limit entries for the user, newest first.
func (r *HistoryRepositoryPG) ListRecent(ctx context.Context, userID string, limit int) ([]domain.HistoryItem, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectRecentHistory, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.HistoryItem, 0, limit)
	for rows.Next() {
		var (
			item          domain.HistoryItem
			module        string
			input, output []byte
		)
		if err := rows.Scan(&item.ID, &item.UserID, &module, &input, &output, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.ModuleType = domain.ModuleType(module)
		item.InputData = json.RawMessage(input)
		item.OutputData = json.RawMessage(output)
		items = append(items, item)
	}
	return items, rows.Err()
}

func jsonOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

var _ domain.HistoryRepository = (*HistoryRepositoryPG)(nil)
