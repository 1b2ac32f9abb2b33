package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lk16/reversi/internal/othello"
)

func main() {
	boardString := flag.String("board", othello.NewBoardStart().String(), "the board to show")
	flag.Parse()

	board, err := othello.ParseBoard(*boardString)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	board.Print()

	moves := board.LegalMoves(board.Turn())
	fields := make([]string, 0, len(moves))
	for _, move := range moves {
		fields = append(fields, board.FieldName(move.Square))
	}

	black, white := board.Score()
	fmt.Printf("Score: %d-%d\n", black, white)
	fmt.Printf("Legal moves for %s: %s\n", board.Turn(), strings.Join(fields, " "))
}
