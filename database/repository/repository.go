package repository

import (
	unlockRepo "travellocal/database/repository/unlock"
)

// UnlockRepository is the schedule unlock ledger.
type UnlockRepository = unlockRepo.UnlockRepository

// NewMongoUnlockRepo builds the ledger on the given database and ensures its indexes.
var NewMongoUnlockRepo = unlockRepo.NewMongoUnlockRepo
