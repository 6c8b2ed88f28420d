package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeUnprocessable, status: http.StatusUnprocessableEntity, publicMsg: "event cannot be processed", detailsOK: true},
		{code: CodeConfiguration, status: http.StatusInternalServerError, publicMsg: "service misconfigured"},
		{code: CodeCRM, status: http.StatusBadGateway, publicMsg: "crm synchronization failed", retryable: true, detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "fetch order")
	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved")
	}
	if As(err).Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", As(err).Code())
	}
}

func TestLoggedPropagatesThroughChain(t *testing.T) {
	inner := New(CodeNotFound, "order missing").MarkLogged()
	outer := Wrap(CodeCRM, inner, "sync failed")
	if !Logged(outer) {
		t.Fatalf("expected logged flag to survive wrapping")
	}
	if Logged(New(CodeNotFound, "fresh")) {
		t.Fatalf("fresh error should not be marked logged")
	}
}

func TestIsCode(t *testing.T) {
	err := Wrap(CodeConfiguration, stdErrors.New("no key"), "missing credential")
	if !IsCode(err, CodeConfiguration) {
		t.Fatalf("expected configuration code match")
	}
	if IsCode(err, CodeValidation) {
		t.Fatalf("unexpected validation match")
	}
	if IsCode(stdErrors.New("plain"), CodeValidation) {
		t.Fatalf("plain error should not match")
	}
}
