package models

import (
	"github.com/google/uuid"
)

// assignID gives a row a UUID before insert; works the same on Postgres and SQLite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All returns every table the API owns, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&Profile{},
		&Job{},
		&Resume{},
		&Subscription{},
	}
}
