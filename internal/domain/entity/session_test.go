package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSession_DefaultState(t *testing.T) {
	s := NewSession(1, 10)
	require.Equal(t, StateMainMenu, s.State)
	require.Equal(t, int64(1), s.ID)
	require.Equal(t, int64(10), s.ChatID)
	require.Equal(t, ModeGlobal, s.Mode)
	require.Equal(t, AlgorithmORB, s.Params.Algorithm)
	require.Nil(t, s.Project)
}

func TestProject_RegionsIsCopy(t *testing.T) {
	p := &Project{
		Crop: RectPolygon(10, 10),
		ROIs: []Polygon{{{1, 1}, {4, 1}, {4, 4}}},
	}
	r := p.Regions()
	r.ROIs[0][0] = Point{X: 9, Y: 9}
	r.Crop[0] = Point{X: 5, Y: 5}

	require.Equal(t, Point{X: 1, Y: 1}, p.ROIs[0][0])
	require.Equal(t, Point{X: 0, Y: 0}, p.Crop[0])
}

func TestSessionDefaults_NewSession(t *testing.T) {
	d := SessionDefaults{Mode: ModeRiss, Channel: ChannelRed, Params: DefaultRegistrationParams()}
	d.Params.Algorithm = AlgorithmSIFT

	s := d.NewSession(2, 20)
	require.Equal(t, ModeRiss, s.Mode)
	require.Equal(t, ChannelRed, s.Channel)
	require.Equal(t, AlgorithmSIFT, s.Params.Algorithm)
	require.Equal(t, ChannelGray, NewSession(1, 1).Channel)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	scale := Scale(0.5)
	s := NewSession(1, 10)
	s.Project = NewProject(nil, ChannelGray)
	s.Project.Crop = RectPolygon(10, 10)
	s.Project.ROIs = []Polygon{{{1, 1}, {4, 1}, {4, 4}}}
	s.Project.Scale = &scale

	c := s.Clone()
	c.SetState(StateProcessing)
	c.Project.Crop[0] = Point{X: 7, Y: 7}
	c.Project.ROIs[0][1] = Point{X: 8, Y: 8}
	*c.Project.Scale = 2
	c.Project.SetChannel(ChannelRed)

	require.Equal(t, StateMainMenu, s.State)
	require.Equal(t, Point{X: 0, Y: 0}, s.Project.Crop[0])
	require.Equal(t, Point{X: 4, Y: 1}, s.Project.ROIs[0][1])
	require.Equal(t, Scale(0.5), *s.Project.Scale)
	require.Equal(t, ChannelGray, s.Project.Channel)
	require.Nil(t, (*Session)(nil).Clone())
}

func TestProject_RevisionChangesWithOrigin(t *testing.T) {
	a, b := NewProject(nil, ChannelGray), NewProject(nil, ChannelGray)
	require.NotEqual(t, a.Revision, b.Revision)

	rev := a.Revision
	a.Binary = NewMask(2, 2)
	a.ReplaceOrigin(nil)
	require.Nil(t, a.Binary)
	require.NotEqual(t, rev, a.Revision)

	rev = a.Revision
	a.SetChannel(ChannelGray)
	require.Equal(t, rev, a.Revision)
	a.SetChannel(ChannelBlue)
	require.NotEqual(t, rev, a.Revision)
	require.Equal(t, a.Revision, a.Clone().Revision)
}
