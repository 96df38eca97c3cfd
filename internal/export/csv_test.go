package export

import (
	"bytes"
	"testing"

	"LifeStats/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQuoteField(t *testing.T) {
	assert.Equal(t, `""`, QuoteField(""))
	assert.Equal(t, `"home"`, QuoteField("home"))
	assert.Equal(t, `"say ""hi"", ok"`, QuoteField(`say "hi", ok`))
}

func TestWriteBathroomCSV(t *testing.T) {
	loc := `the "office"`
	who := "Bob"
	vr := 1
	var buf bytes.Buffer
	require.NoError(t, WriteBathroomCSV(&buf, []*model.BathroomEvent{
		{ID: 2, EventType: model.EventCum, Timestamp: "2024-01-01T23:00", InVR: &vr, Person1: &who, NormalizedWho: &who},
		{ID: 1, EventType: model.EventPee, Timestamp: "2024-01-01T08:00", Location: &loc},
	}))

	want := `"ID","Type","Timestamp","Location","In VR","Person 1","Person 2","Normalized Who","Normalized Person 2"` + "\n" +
		`"2","cum","2024-01-01T23:00","","1","Bob","","Bob",""` + "\n" +
		`"1","pee","2024-01-01T08:00","the ""office""","","","","",""` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteDentalCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDentalCSV(&buf, nil))
	assert.Equal(t, `"ID","Timestamp","Used Flosser"`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteDentalCSV(&buf, []*model.DentalEvent{{ID: 5, Timestamp: "2024-01-01T20:00", UsedFlosser: 1}}))
	assert.Contains(t, buf.String(), `"5","2024-01-01T20:00","1"`)
}
