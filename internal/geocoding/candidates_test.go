package geocoding_test

import (
	"testing"

	"github.com/UnknownOlympus/geoenrich/internal/geocoding"
	"github.com/stretchr/testify/assert"
)

func TestBuildCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		normalized string
		suffix     string
		want       []string
	}{
		{
			name:       "all three variations",
			normalized: "Av. Paulista, 1000, Bela Vista",
			suffix:     "São Paulo, Brasil",
			want: []string{
				"Av. Paulista, 1000, Bela Vista, São Paulo, Brasil",
				"Avenida Paulista, 1000, Bela Vista, São Paulo, Brasil",
				"Av. Paulista, São Paulo, Brasil",
			},
		},
		{
			name:       "nothing to expand",
			normalized: "Rua Augusta, 10",
			suffix:     "Brasil",
			want:       []string{"Rua Augusta, 10, Brasil", "Rua Augusta, Brasil"},
		},
		{
			name:       "single segment collapses to one candidate",
			normalized: "Campinas",
			suffix:     "Brasil",
			want:       []string{"Campinas, Brasil"},
		},
		{
			name:       "suffix with stray separators",
			normalized: "Rua A",
			suffix:     " , Brasil, ",
			want:       []string{"Rua A, Brasil"},
		},
		{
			name:       "no suffix",
			normalized: "R. Augusta, 10",
			suffix:     "",
			want:       []string{"R. Augusta, 10", "Rua Augusta, 10", "R. Augusta"},
		},
		{
			name:       "empty address",
			normalized: "  ",
			suffix:     "Brasil",
			want:       nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, geocoding.BuildCandidates(tc.normalized, tc.suffix))
		})
	}
}

func TestExpandAbbreviations(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Avenida Brasil, 500", geocoding.ExpandAbbreviations("Av. Brasil, 500"))
	assert.Equal(t, "Avenida Brasil, 500", geocoding.ExpandAbbreviations("av Brasil, 500"))
	assert.Equal(t, "Alameda Santos, 2", geocoding.ExpandAbbreviations("Al. Santos, 2"))
	assert.Equal(t, "Travessa Ipê, 3", geocoding.ExpandAbbreviations("Tv. Ipê, 3"))
	assert.Equal(t, "Rodovia Anhanguera, km 20", geocoding.ExpandAbbreviations("Rod. Anhanguera, km 20"))
	assert.Equal(t, "Estrada Velha", geocoding.ExpandAbbreviations("Estr. Velha"))
	assert.Equal(t, "Praça da Sé", geocoding.ExpandAbbreviations("Pça. da Sé"))
	assert.Equal(t, "Avenida Atlântica", geocoding.ExpandAbbreviations("Avenida Atlântica"))
	assert.Equal(t, "Rua Dr. Arnaldo", geocoding.ExpandAbbreviations("R. Dr. Arnaldo"))
}
