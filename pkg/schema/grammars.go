package schema

import (
	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
)

// Grammars of the GDSII stream format, from the innermost level outwards.
var (
	Property = grammar.New("property",
		grammar.One(codec.PropAttr),
		grammar.One(codec.PropValue),
	)

	Strans = grammar.New("strans",
		grammar.One(codec.Strans),
		grammar.Opt(codec.Mag),
		grammar.Opt(codec.Angle),
	)

	Boundary = grammar.New("boundary",
		grammar.One(codec.Boundary),
		grammar.Opt(codec.ElFlags),
		grammar.Opt(codec.Plex),
		grammar.One(codec.Layer),
		grammar.One(codec.DataType),
		grammar.One(codec.XY),
		grammar.OptMany(Property),
		grammar.One(codec.EndEl),
	)

	Path = grammar.New("path",
		grammar.One(codec.Path),
		grammar.Opt(codec.ElFlags),
		grammar.Opt(codec.Plex),
		grammar.One(codec.Layer),
		grammar.One(codec.DataType),
		grammar.Opt(codec.PathType),
		grammar.Opt(codec.Width),
		grammar.Opt(codec.BgnExtn),
		grammar.Opt(codec.EndExtn),
		grammar.One(codec.XY),
		grammar.OptMany(Property),
		grammar.One(codec.EndEl),
	)

	Text = grammar.New("text",
		grammar.One(codec.Text),
		grammar.Opt(codec.ElFlags),
		grammar.Opt(codec.Plex),
		grammar.One(codec.Layer),
		grammar.One(codec.TextType),
		grammar.Opt(codec.Presentation),
		grammar.Opt(codec.PathType),
		grammar.Opt(codec.Width),
		grammar.Opt(Strans),
		grammar.One(codec.XY),
		grammar.One(codec.String),
		grammar.OptMany(Property),
		grammar.One(codec.EndEl),
	)

	Node = grammar.New("node",
		grammar.One(codec.Node),
		grammar.Opt(codec.ElFlags),
		grammar.Opt(codec.Plex),
		grammar.One(codec.Layer),
		grammar.One(codec.NodeType),
		grammar.One(codec.XY),
		grammar.OptMany(Property),
		grammar.One(codec.EndEl),
	)

	Box = grammar.New("box",
		grammar.One(codec.Box),
		grammar.Opt(codec.ElFlags),
		grammar.Opt(codec.Plex),
		grammar.One(codec.Layer),
		grammar.One(codec.BoxType),
		grammar.One(codec.XY),
		grammar.OptMany(Property),
		grammar.One(codec.EndEl),
	)

	SRef = grammar.New("sref",
		grammar.One(codec.SRef),
		grammar.Opt(codec.ElFlags),
		grammar.Opt(codec.Plex),
		grammar.One(codec.SName),
		grammar.Opt(Strans),
		grammar.One(codec.XY),
		grammar.OptMany(Property),
		grammar.One(codec.EndEl),
	)

	ARef = grammar.New("aref",
		grammar.One(codec.ARef),
		grammar.Opt(codec.ElFlags),
		grammar.Opt(codec.Plex),
		grammar.One(codec.SName),
		grammar.Opt(Strans),
		grammar.One(codec.ColRow),
		grammar.One(codec.XY),
		grammar.OptMany(Property),
		grammar.One(codec.EndEl),
	)

	// Element is any of the element grammars, selected by the leading record.
	Element = grammar.NewChoice("element", Boundary, Path, Text, Node, Box, SRef, ARef)

	Structure = grammar.New("structure",
		grammar.One(codec.BgnStr),
		grammar.One(codec.StrName),
		grammar.Opt(codec.StrClass),
		grammar.OptMany(Element),
		grammar.One(codec.EndStr),
	)

	Library = grammar.New("library",
		grammar.One(codec.Header),
		grammar.One(codec.BgnLib),
		grammar.Opt(codec.LibDirSize),
		grammar.Opt(codec.SrfName),
		grammar.Opt(codec.LibSecur),
		grammar.One(codec.LibName),
		grammar.Opt(codec.RefLibs),
		grammar.Opt(codec.Fonts),
		grammar.Opt(codec.AttrTable),
		grammar.Opt(codec.Generations),
		grammar.Opt(codec.Format),
		grammar.OptMany(codec.Mask),
		grammar.Opt(codec.EndMasks),
		grammar.One(codec.Units),
		grammar.OptMany(Structure),
		grammar.One(codec.EndLib),
	)
)
