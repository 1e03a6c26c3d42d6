package store

import "strings"

const (
	GlobalKeyPrefix = "studypath"
)

// GenerateStoreKey builds a namespaced key for a given component, object
// type, and identifier. If paramsKey are provided, they are joined by "_"
// and appended to the key.
func GenerateStoreKey(component, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, component, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// Fixed keys for the persisted client blobs. One key holds the credential
// blob, one the accumulated onboarding data, one the onboarding step.
func CredentialsKey() string {
	return GenerateStoreKey("auth", "credentials", "current")
}

func OnboardingDataKey() string {
	return GenerateStoreKey("onboarding", "data", "current")
}

func OnboardingStepKey() string {
	return GenerateStoreKey("onboarding", "step", "current")
}
