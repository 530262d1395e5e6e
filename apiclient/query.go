package apiclient

import (
	"net/url"
	"strconv"
)

// Query collects optional query parameters. Setters taking a pointer skip nil so an
// option the caller never provided is absent from the URL entirely.
type Query struct {
	values url.Values
}

func (q *Query) set(key, value string) *Query {
	if q.values == nil {
		q.values = url.Values{}
	}
	q.values.Add(key, value)
	return q
}

func (q *Query) Int(key string, v int) *Query {
	return q.set(key, strconv.Itoa(v))
}

func (q *Query) OptInt(key string, v *int) *Query {
	if v == nil {
		return q
	}
	return q.Int(key, *v)
}

func (q *Query) OptBool(key string, v *bool) *Query {
	if v == nil {
		return q
	}
	return q.set(key, strconv.FormatBool(*v))
}

func (q *Query) OptString(key string, v *string) *Query {
	if v == nil {
		return q
	}
	return q.set(key, *v)
}

// Encode renders the parameters in key order, or "" when none were set.
func (q Query) Encode() string {
	if len(q.values) == 0 {
		return ""
	}
	return q.values.Encode()
}
