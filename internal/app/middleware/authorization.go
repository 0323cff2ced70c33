package middleware

import (
	"context"

	"skillswap/internal/app/commands"
	"skillswap/internal/domain/shared/failure"
	"skillswap/internal/domain/user"
)

// ErrActorBanned is returned for commands issued by a platform-banned account.
var ErrActorBanned = failure.Forbidden("middleware: account is banned")

// ActorCommand is implemented by commands issued on behalf of a user.
type ActorCommand interface {
	commands.Command
	Actor() user.ID
}

// BanChecker answers whether an account is banned platform-wide.
type BanChecker interface {
	IsBanned(ctx context.Context, id user.ID) (bool, error)
}

// RejectBannedActors stops commands whose actor is banned before any handler runs.
func RejectBannedActors(checker BanChecker) CommandMiddleware {
	if checker == nil {
		panic("middleware: ban checker required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if actorCmd, ok := cmd.(ActorCommand); ok && actorCmd.Actor() != "" {
				banned, err := checker.IsBanned(ctx, actorCmd.Actor())
				if err != nil {
					return nil, err
				}
				if banned {
					return nil, ErrActorBanned
				}
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}
