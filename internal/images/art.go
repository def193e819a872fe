package images

// Built-in 12×12 icon art, '#' marks an opaque pixel.
var iconArt = map[string][]string{
	"alarm_check": {
		".....##.....",
		"...######...",
		"..########..",
		"..#######.#.",
		"..######.##.",
		"..#.###.###.",
		"..##.#.####.",
		".####.#####.",
		".##########.",
		"############",
		".....##.....",
		"............",
	},
	"alarm_none": {
		".....##.....",
		"...######...",
		"..##....##..",
		"..#......#..",
		"..#......#..",
		"..#......#..",
		"..#......#..",
		".##......##.",
		".#........#.",
		"############",
		".....##.....",
		"............",
	},
	"alarm_note": {
		"......####..",
		"......#####.",
		"......#..##.",
		"......#...#.",
		"......#.....",
		"......#.....",
		"......#.....",
		"...####.....",
		"..#####.....",
		"..#####.....",
		"...###......",
		"............",
	},
	"alarm_off": {
		"#....##.....",
		".#.######...",
		"..#.....##..",
		"..##.....#..",
		"..#.#....#..",
		"..#..#...#..",
		"..#...#..#..",
		".##....#.##.",
		".#......#.#.",
		"#######..###",
		".....##...#.",
		"...........#",
	},
	"alarm_plus": {
		".....##.....",
		".....##.....",
		".....##.....",
		".....##.....",
		".....##.....",
		"############",
		"############",
		".....##.....",
		".....##.....",
		".....##.....",
		".....##.....",
		".....##.....",
	},
	"wifi_connected": {
		"....####....",
		"..##....##..",
		".#........#.",
		"#...####...#",
		"..##....##..",
		".#........#.",
		"....####....",
		"...#....#...",
		"............",
		".....##.....",
		".....##.....",
		"............",
	},
	"wifi_disconnected": {
		"#..........#",
		".#..####..#.",
		"..##....##..",
		".#.#....#.#.",
		"#...#..#...#",
		"..##.##.##..",
		".#...##...#.",
		"....#..#....",
		"...#....#...",
		"..#..##..#..",
		".#...##...#.",
		"#..........#",
	},
	"wifi_wait": {
		"############",
		".#........#.",
		"..#......#..",
		"...#....#...",
		"....#..#....",
		".....##.....",
		".....##.....",
		"....#..#....",
		"...#.##.#...",
		"..#.####.#..",
		".#.######.#.",
		"############",
	},
}
