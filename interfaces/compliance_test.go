package interfaces_test

import (
	"testing"

	"nba-predictions-go/catalog"
	"nba-predictions-go/database"
	"nba-predictions-go/interfaces"
	"nba-predictions-go/services"
)

// Interface compliance checks - these will fail to compile if implementations drift
var (
	_ interfaces.PredictionStore = (*database.MongoPredictionRepository)(nil)
	_ interfaces.PredictionStore = (*database.SQLPredictionRepository)(nil)
	_ interfaces.PredictionStore = (*database.MemoryPredictionRepository)(nil)

	_ interfaces.UserStore = (*database.MongoUserRepository)(nil)
	_ interfaces.UserStore = (*database.SQLUserRepository)(nil)
	_ interfaces.UserStore = (*database.MemoryUserRepository)(nil)

	_ interfaces.AuthSession = services.ContextSession{}
	_ interfaces.TeamCatalog = (*catalog.Catalog)(nil)
)

func TestCompliance(t *testing.T) {}
