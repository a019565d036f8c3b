// Package mocks provides mock implementations for testing the profile gate.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockProfileAPI(ctrl)
//	api.EXPECT().FetchProfile(gomock.Any(), "tok", auth.RoleEmployee).Return(rec, nil)
package mocks

// Generate mock for ProfileAPI interface from internal/ports package.
// This creates MockProfileAPI with methods for all ProfileAPI interface methods:
// SignIn, FetchProfile, SubmitProfile, FetchDocument, ConfirmBank
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_api_mock.go github.com/target/profilegate/internal/ports ProfileAPI

// Generate mock for SessionCache interface from internal/ports package.
// This creates MockSessionCache with methods for all SessionCache interface methods:
// LoadCredentials, SaveCredentials, CompletionVerified, MarkCompletionVerified,
// ForgetCompletion, Clear
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_cache_mock.go github.com/target/profilegate/internal/ports SessionCache
