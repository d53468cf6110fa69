package render_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/RadicalTray/image-viewer/render"
	"github.com/RadicalTray/image-viewer/render/rendertest"
)

func cacheBlob(t *testing.T, header render.PipelineCacheHeader, payload ...byte) []byte {
	t.Helper()

	out := &bytes.Buffer{}
	require.NoError(t, binary.Write(out, common.ByteOrder, header))
	out.Write(payload)
	return out.Bytes()
}

func matchingHeader() render.PipelineCacheHeader {
	return render.PipelineCacheHeader{
		Length:   32,
		Version:  uint32(core1_0.PipelineCacheHeaderVersionOne),
		VendorID: 0x10de,
		DeviceID: 0x2204,
		UUID:     rendertest.CacheUUID,
	}
}

func TestParsePipelineCacheHeader(t *testing.T) {
	data := cacheBlob(t, matchingHeader(), 0xde, 0xad)

	header, err := render.ParsePipelineCacheHeader(data)
	require.NoError(t, err)
	require.Equal(t, matchingHeader(), header)

	_, err = render.ParsePipelineCacheHeader(data[:31])
	require.True(t, errors.Is(err, render.ErrInvalidPipelineCache))
}

func TestPipelineCacheHeader_Validate(t *testing.T) {
	props := &rendertest.NewGPU(t).Physical.Props

	testCases := map[string]struct {
		mutate func(h *render.PipelineCacheHeader)
		valid  bool
	}{
		"Matching": {
			mutate: func(h *render.PipelineCacheHeader) {},
			valid:  true,
		},
		"ShortLength": {
			mutate: func(h *render.PipelineCacheHeader) { h.Length = 16 },
		},
		"UnknownVersion": {
			mutate: func(h *render.PipelineCacheHeader) { h.Version = 7 },
		},
		"OtherVendor": {
			mutate: func(h *render.PipelineCacheHeader) { h.VendorID = 0x1002 },
		},
		"OtherDevice": {
			mutate: func(h *render.PipelineCacheHeader) { h.DeviceID = 0x1 },
		},
		"OtherDriverBuild": {
			mutate: func(h *render.PipelineCacheHeader) { h.UUID = uuid.Nil },
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			header := matchingHeader()
			tc.mutate(&header)

			err := header.Validate(props)
			if tc.valid {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, render.ErrInvalidPipelineCache))
		})
	}
}
