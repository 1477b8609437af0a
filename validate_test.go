package kcgx

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intValidator(key, value []byte) ValidateResult {
	n, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return ValidateResult{Valid: false}
	}
	return ValidateResult{Valid: true, Type: TypeInteger, IntVal: n}
}

func TestKeyTable_Dispatch_ValidInteger(t *testing.T) {
	table := KeyTable{{Name: "age", Validator: intValidator}}
	p := &Pair{Class: ClassForm, Key: []byte("age"), Value: []byte("42")}
	table.dispatch(p)
	assert.Equal(t, StateValid, p.State)
	assert.Equal(t, TypeInteger, p.Type)
	assert.Equal(t, int64(42), p.IntVal)
	assert.Equal(t, 0, p.KeyBucketIndex)
}

func TestKeyTable_Dispatch_Invalid(t *testing.T) {
	table := KeyTable{{Name: "age", Validator: intValidator}}
	p := &Pair{Class: ClassForm, Key: []byte("age"), Value: []byte("not-a-number")}
	table.dispatch(p)
	assert.Equal(t, StateInvalid, p.State)
}

func TestKeyTable_Dispatch_UnknownKey(t *testing.T) {
	table := KeyTable{{Name: "age", Validator: intValidator}}
	p := &Pair{Class: ClassForm, Key: []byte("name"), Value: []byte("bob")}
	table.dispatch(p)
	assert.Equal(t, StateUnchecked, p.State)
	assert.Equal(t, len(table), p.KeyBucketIndex)
}

func TestKeyTable_Dispatch_NoValidatorIsUnchecked(t *testing.T) {
	table := KeyTable{{Name: "free"}}
	p := &Pair{Class: ClassForm, Key: []byte("free"), Value: []byte("anything")}
	table.dispatch(p)
	assert.Equal(t, StateUnchecked, p.State)
	assert.Equal(t, 0, p.KeyBucketIndex)
}

func TestKeyTable_Dispatch_FirstMatchWins(t *testing.T) {
	calledFirst := false
	calledSecond := false
	table := KeyTable{
		{Name: "dup", Validator: func(k, v []byte) ValidateResult {
			calledFirst = true
			return ValidateResult{Valid: true, Type: TypeString}
		}},
		{Name: "dup", Validator: func(k, v []byte) ValidateResult {
			calledSecond = true
			return ValidateResult{Valid: true, Type: TypeString}
		}},
	}
	p := &Pair{Class: ClassForm, Key: []byte("dup"), Value: []byte("x")}
	table.dispatch(p)
	assert.True(t, calledFirst)
	assert.False(t, calledSecond)
	assert.Equal(t, 0, p.KeyBucketIndex)
}
