package store

import "testing"

func TestGenerateStoreKey(t *testing.T) {
	tests := []struct {
		name        string
		component   string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			component:   "auth",
			objectType:  "credentials",
			identifier:  "current",
			paramsKey:   nil,
			expectedKey: "studypath:auth:credentials:current",
		},
		{
			name:        "with empty paramsKey",
			component:   "onboarding",
			objectType:  "data",
			identifier:  "current",
			paramsKey:   []string{},
			expectedKey: "studypath:onboarding:data:current",
		},
		{
			name:        "with one paramsKey",
			component:   "catalog",
			objectType:  "page",
			identifier:  "subject1",
			paramsKey:   []string{"p1"},
			expectedKey: "studypath:catalog:page:subject1:p1",
		},
		{
			name:        "with multiple paramsKey",
			component:   "catalog",
			objectType:  "page",
			identifier:  "chapter1",
			paramsKey:   []string{"p1", "l20"},
			expectedKey: "studypath:catalog:page:chapter1:p1_l20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateStoreKey(tt.component, tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateStoreKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}

func TestFixedKeys(t *testing.T) {
	if CredentialsKey() != "studypath:auth:credentials:current" {
		t.Errorf("unexpected credentials key: %s", CredentialsKey())
	}
	if OnboardingDataKey() == OnboardingStepKey() {
		t.Error("onboarding data and step keys must differ")
	}
}
