// Package mocks provides mock implementations for testing the task lifecycle engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces in internal/core. Regenerate after interface changes with:
//
//	go generate ./internal/mocks
package mocks

// Generate mock for TaskRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=task_repository_mock.go github.com/target/tasker/internal/core TaskRepository

// Generate mock for ResultCache interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=result_cache_mock.go github.com/target/tasker/internal/core ResultCache

// Generate mock for Dispatcher interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=dispatcher_mock.go github.com/target/tasker/internal/core Dispatcher

// Generate mock for Handler and HandlerResolver interfaces from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=handler_mock.go github.com/target/tasker/internal/core Handler,HandlerResolver
