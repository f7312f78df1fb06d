package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/genegraph/pkg/errs"
)

func TestParseDomainFilename(t *testing.T) {

	tests := []struct {
		filename  string
		wantIndex int
		wantName  string
		wantErr   bool
	}{
		{filename: "matrix_domain2_NBARC.csv", wantIndex: 2, wantName: "NBARC"},
		{filename: "uploads/Domain1_P_loop.xlsx", wantIndex: 1, wantName: "P_loop"},
		{filename: "domain3_LRR.tsv", wantIndex: 3, wantName: "LRR"},
		{filename: "matrix.csv", wantErr: true},
		{filename: "nodomain.csv", wantErr: true},
		{filename: "domainX_TIR.csv", wantErr: true},
		{filename: "domain1_.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			df, err := ParseDomainFilename(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errs.KindSchema, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, df.Index)
			assert.Equal(t, tt.wantName, df.Name)
		})
	}
}

func TestParseDomainFilenamesOrdersByIndex(t *testing.T) {

	files, err := ParseDomainFilenames([]string{"m_domain3_LRR.csv", "m_domain1_TIR.csv", "m_domain2_NBARC.csv"})
	require.NoError(t, err)

	assert.Equal(t, []DomainFile{
		{Index: 1, Name: "TIR", Source: 1},
		{Index: 2, Name: "NBARC", Source: 2},
		{Index: 3, Name: "LRR", Source: 0},
	}, files)
}

func TestParseDomainFilenamesRejectsDuplicates(t *testing.T) {

	_, err := ParseDomainFilenames([]string{"a_domain1_TIR.csv", "b_domain2_TIR.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Domain TIR is given by more than one matrix file")
	assert.Equal(t, errs.KindSchema, errs.KindOf(err))
}
