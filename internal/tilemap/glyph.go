package tilemap

var cornerGlyphs = [16]rune{
	' ', '╴', '╷', '┐',
	'╶', '─', '┌', '┬',
	'╵', '┘', '│', '┤',
	'└', '┴', '├', '┼',
}

// Glyph returns a box drawing rune for walls and floor. Overlay codes come
// back as '?'; callers that know the overlay set draw those themselves.
func Glyph(t Tile) rune {
	switch {
	case t >= TileEmpty && t <= 15:
		return cornerGlyphs[t]
	case t == TileVertical:
		return '│'
	case t == TileHorizontal:
		return '─'
	}
	return '?'
}

// Render draws the whole map with Glyph, one line per tile row.
func (m *Map) Render() string {
	buf := make([]rune, 0, (m.cols+1)*m.rows)
	for Y := 0; Y < m.rows; Y++ {
		for X := 0; X < m.cols; X++ {
			buf = append(buf, Glyph(m.grid[Y*m.cols+X]))
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
