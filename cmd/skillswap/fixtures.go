package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"skillswap/internal/app/handlers/support"
	"skillswap/internal/app/uow"
	"skillswap/internal/domain/shared/failure"
	domainuser "skillswap/internal/domain/user"
)

// userFixture seeds accounts for local runs; production accounts are owned by the
// identity subsystem.
type userFixture struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func (a *application) loadUserFixtures(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.logger.Info("user fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []userFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		u, err := domainuser.NewUser(domainuser.CreateParams{
			ID:        domainuser.ID(fx.ID),
			FirstName: fx.FirstName,
			LastName:  fx.LastName,
			Email:     fx.Email,
			Role:      domainuser.Role(fx.Role),
			CreatedAt: now,
		})
		if err != nil {
			a.logger.Error("fixture invalid", "user_id", fx.ID, "error", err)
			continue
		}
		err = support.Within(ctx, a.factory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
			if _, err := unit.Users().ByID(ctx, u.ID); err == nil {
				return nil
			} else if !errors.Is(err, failure.ErrNotFound) {
				return err
			}
			return unit.Users().Save(ctx, u)
		})
		if err != nil {
			a.logger.Error("cannot store fixture user", "user_id", fx.ID, "error", err)
			continue
		}
		a.logger.Info("user fixture imported", "user_id", u.ID)
	}
	return nil
}
