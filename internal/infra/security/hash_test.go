package security

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !strings.HasPrefix(hash, "argon2id$v=19$") {
		t.Fatalf("unexpected hash prefix: %s", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, hash := range []string{"plainhash", "argon2id$v=19$m=1,t=1,p=1$!!$!!", "bcrypt$whatever"} {
		if ok, err := VerifyPassword("password", hash); err == nil || ok {
			t.Fatalf("hash %q: ok=%v err=%v, want verification error", hash, ok, err)
		}
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	ok, err := VerifyPassword("", "whatever")
	if err != nil || ok {
		t.Fatalf("empty password: ok=%v err=%v, want false, nil", ok, err)
	}

	ok, err = VerifyPassword("password", "")
	if err != nil || ok {
		t.Fatalf("empty hash: ok=%v err=%v, want false, nil", ok, err)
	}
}

func TestConfigureArgon2Validation(t *testing.T) {
	defer func() {
		if err := ConfigureArgon2(defaultArgon2Config); err != nil {
			t.Fatalf("restore config: %v", err)
		}
	}()

	if err := ConfigureArgon2(Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}); err == nil {
		t.Fatal("low memory config must be rejected")
	}

	custom := Argon2Config{Memory: 16 * 1024, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32}
	if err := ConfigureArgon2(custom); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if got := CurrentArgon2Config(); got != custom {
		t.Fatalf("active config = %+v, want %+v", got, custom)
	}
}

func TestDefaultPasswordValidator(t *testing.T) {
	v := DefaultPasswordValidator()

	if err := v.Validate("short", nil); err == nil {
		t.Fatal("short password must be rejected")
	}
	if err := v.Validate("password", nil); err == nil {
		t.Fatal("weak dictionary password must be rejected")
	}
	if err := v.Validate("tr4verse-Quiet-Lamp", nil); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}
}
