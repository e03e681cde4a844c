package service

import (
	"context"
	"testing"

	"sushishop/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo)
	actorID := uuid.New()

	require.NoError(t, svc.Record(context.Background(), AuditEntry{
		ActorID:    &actorID,
		Action:     model.ActionCreateProduct,
		EntityID:   "p-1",
		EntityName: "Дракон",
		Details:    map[string]int{"price": 690},
	}))
	require.NoError(t, svc.Record(context.Background(), AuditEntry{Action: model.ActionRegisterUser}))

	repo.logs[0].User = &model.User{Email: "admin@sushi.local"}

	logs, total, err := svc.GetAuditLogs(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, logs, 2)

	assert.Equal(t, actorID.String(), logs[0].UserID)
	assert.Equal(t, "admin@sushi.local", logs[0].UserEmail)
	assert.JSONEq(t, `{"price":690}`, logs[0].Details)

	assert.Equal(t, "System", logs[1].UserEmail)
	assert.Empty(t, logs[1].UserID)
	assert.Empty(t, logs[1].Details)
}
