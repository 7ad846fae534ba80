// SPDX-License-Identifier: MPL-2.0

package classfile

import (
	"errors"
	"testing"
)

func TestMapDescriptor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"I", "I"},
		{"Lcom/x/A;", "Lhidden/com/x/A;"},
		{"[[Lcom/x/A;", "[[Lhidden/com/x/A;"},
		{"(ILcom/x/A;[Lorg/y/B;)Lcom/x/C;", "(ILhidden/com/x/A;[Lorg/y/B;)Lhidden/com/x/C;"},
		{"()V", "()V"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := mapDescriptor(tt.in, relocateX)
			if err != nil {
				t.Fatalf("mapDescriptor(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("mapDescriptor(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapDescriptor_Unterminated(t *testing.T) {
	t.Parallel()

	if _, err := mapDescriptor("(Lcom/x/A", relocateX); !errors.Is(err, ErrMalformed) {
		t.Errorf("mapDescriptor() error = %v, want ErrMalformed", err)
	}
}

func TestMapSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, want string
	}{
		{
			name: "field",
			in:   "Ljava/util/Map<Ljava/lang/String;Lcom/x/A;>;",
			want: "Ljava/util/Map<Ljava/lang/String;Lhidden/com/x/A;>;",
		},
		{
			name: "class with bounds",
			in:   "<T:Lcom/x/Base;U::Lcom/x/I;>Ljava/lang/Object;Lcom/x/I<TT;>;",
			want: "<T:Lhidden/com/x/Base;U::Lhidden/com/x/I;>Ljava/lang/Object;Lhidden/com/x/I<TT;>;",
		},
		{
			name: "method with throws",
			in:   "<E:Ljava/lang/Exception;>(TE;[Ljava/util/List<+Lcom/x/A;>;)V^TE;^Lcom/x/Failure;",
			want: "<E:Ljava/lang/Exception;>(TE;[Ljava/util/List<+Lhidden/com/x/A;>;)V^TE;^Lhidden/com/x/Failure;",
		},
		{
			name: "wildcards",
			in:   "Ljava/util/List<*>;Lcom/x/Box<-Lcom/x/A;>;",
			want: "Ljava/util/List<*>;Lhidden/com/x/Box<-Lhidden/com/x/A;>;",
		},
		{
			name: "inner class",
			in:   "Lcom/x/Outer<Lcom/x/A;>.Inner<TT;>;",
			want: "Lhidden/com/x/Outer<Lhidden/com/x/A;>.Inner<TT;>;",
		},
		{
			name: "type variable only",
			in:   "TT;",
			want: "TT;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := mapSignature(tt.in, relocateX)
			if err != nil {
				t.Fatalf("mapSignature(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("mapSignature(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapSignature_Malformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"Lcom/x/A", "Lcom/x/A<Lcom/x/B;;", "<T:Lcom/x/A;", "(Lcom/x/A;"} {
		if _, err := mapSignature(in, relocateX); !errors.Is(err, ErrMalformed) {
			t.Errorf("mapSignature(%q) error = %v, want ErrMalformed", in, err)
		}
	}
}
