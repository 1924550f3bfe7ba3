package mhrs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mhrs-agent/internal/browser/browsertest"
)

func TestClassifyModal(t *testing.T) {
	assert.Equal(t, ModalNoAppointment, ClassifyModal("Uygun randevu bulunamadı (RND4010)"))
	assert.Equal(t, ModalBooked, ClassifyModal("Randevunuz oluşturuldu RND5036"))
	assert.Equal(t, ModalMaxExceeded, ClassifyModal("RND5015 randevu sınırı"))
	assert.Equal(t, ModalMaxExceeded, ClassifyModal("RND5036\nRND5015"), "quota code wins over success")
	assert.Equal(t, ModalUnknown, ClassifyModal("Sistem bakımda"))
}

func TestModalInspector_Text(t *testing.T) {
	ctx := context.Background()
	f := browsertest.New()
	m := NewModalInspector(f)

	info, err := m.Text(ctx)
	require.NoError(t, err)
	assert.False(t, info.Present)

	f.Set(SelectorModalBody, browsertest.NewNode("Uygun randevu bulunamadı (RND4010)"))
	info, err = m.Text(ctx)
	require.NoError(t, err)
	assert.True(t, info.Present)
	assert.Equal(t, ModalNoAppointment, info.Kind)
	assert.Contains(t, info.Text, "RND4010")
}

func TestModalInspector_AcceptNotification(t *testing.T) {
	ctx := context.Background()
	f := browsertest.New()
	m := NewModalInspector(f)

	accepted, err := m.AcceptNotification(ctx)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Zero(t, f.Count("click", SelectorModalSecondButton))

	button := browsertest.NewNode("Evet")
	f.Set(SelectorModalSecondButton, button)
	accepted, err = m.AcceptNotification(ctx)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 1, button.Clicks())
}
