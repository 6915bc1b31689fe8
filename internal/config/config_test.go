package config

import "testing"

func validConfig() *Config {
	return &Config{
		Env:                     "development",
		MySQLDSN:                "user:pass@tcp(localhost:3306)/openmrs?parseTime=true",
		RegistrationDatabaseURL: "postgres://localhost:5432/registration",
		OrganizationID:          "0b91d1b6-6cbd-4a37-8b2c-2b8e4f39f0aa",
		HospitalID:              "4a0ad0ba-9f7d-4d51-a7c4-1a8a7a2f1d01",
		PageSize:                1000,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingMySQLDSN(t *testing.T) {
	cfg := validConfig()
	cfg.MySQLDSN = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestValidate_MissingRegistrationURL(t *testing.T) {
	cfg := validConfig()
	cfg.RegistrationDatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing REGISTRATION_DATABASE_URL")
	}
}

func TestValidate_BadOrganizationID(t *testing.T) {
	cfg := validConfig()
	cfg.OrganizationID = "not-a-uuid"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-UUID ORGANIZATION_ID")
	}
}

func TestValidate_ZeroPageSize(t *testing.T) {
	cfg := validConfig()
	cfg.PageSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero PAGE_SIZE")
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing AUTH_TOKEN_SECRET in production")
	}
	cfg.AuthTokenSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTargetURL_Fallback(t *testing.T) {
	cfg := validConfig()
	if got := cfg.TargetURL("pharmacy"); got != cfg.RegistrationDatabaseURL {
		t.Errorf("expected fallback to registration URL, got %s", got)
	}
	cfg.PharmacyDatabaseURL = "postgres://localhost:5432/pharmacy"
	if got := cfg.TargetURL("pharmacy"); got != cfg.PharmacyDatabaseURL {
		t.Errorf("expected pharmacy URL, got %s", got)
	}
}
