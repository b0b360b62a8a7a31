// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package landcover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr error
	}{
		{name: "all", in: "all", want: Names(Classes())},
		{name: "single", in: "water", want: []string{"water"}},
		{name: "ordered by value", in: "water,forest", want: []string{"forest", "water"}},
		{name: "case and spaces", in: " Forest , CROP ", want: []string{"forest", "crop"}},
		{name: "duplicates", in: "moss,moss,all", want: Names(Classes())},
		{name: "unknown", in: "forest,lava", wantErr: ErrUnknownClass},
		{name: "empty", in: " , ", wantErr: ErrNoClasses},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, Names(got))
		})
	}
}

func TestCatalogue(t *testing.T) {
	classes := Classes()
	require.Len(t, classes, 11)

	mangroves, ok := Lookup("mangroves")
	require.True(t, ok)
	assert.Equal(t, 95, mangroves.Value)

	wetland, _ := Lookup("wetland")
	assert.Equal(t, 90, wetland.Value)

	assert.Equal(t, []int{10, 80}, Values([]Class{{"forest", 10}, {"water", 80}}))

	classes[0].Name = "changed"
	assert.Equal(t, "forest", Classes()[0].Name, "Classes returns a copy")
}
