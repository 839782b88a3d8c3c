// Where: cli/internal/domain/value/value_test.go
// What: Tests for value helpers.
// Why: Keep string coercion and placeholder detection stable across refactors.
package value

import "testing"

func TestAsString(t *testing.T) {
	if got := AsString("hello"); got != "hello" {
		t.Errorf("AsString(hello) = %s", got)
	}
	if got := AsString(123); got != "123" {
		t.Errorf("AsString(123) = %s", got)
	}
	if got := AsString(true); got != "true" {
		t.Errorf("AsString(true) = %s", got)
	}
	if got := AsString(nil); got != "" {
		t.Errorf("AsString(nil) = %s", got)
	}
}

func TestHasUnresolvedPlaceholder(t *testing.T) {
	if !HasUnresolvedPlaceholder("arn:${AWS::Region}:thing") {
		t.Errorf("expected placeholder detection")
	}
	if HasUnresolvedPlaceholder("arn:aws:sqs:us-east-1:123:queue") {
		t.Errorf("concrete arn misdetected as placeholder")
	}
}
