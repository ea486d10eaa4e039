// Package shared holds helpers used by the tests of several packages.
//
// The testutil subpackage captures structured log records so tests can
// assert what a component logged:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewHealthService(nil, false, nil, logger)
//	...
//	testutil.AssertLogged(t, logs, slog.LevelWarn, "ReadinessCheck: not ready")
package shared
