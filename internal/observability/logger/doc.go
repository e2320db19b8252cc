// Package logger provee un logger Zap singleton con scoping por contexto.
//
// Inicialización (una vez, en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Logs.Level})
//	defer logger.Sync()
//
// En handlers/services (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("user signed in", logger.AccountID(id))
//
// Sin contexto (fallback al singleton):
//
//	logger.L().Info("server started")
//
// "dev" loguea a consola con colores; "prod" en JSON.
package logger
