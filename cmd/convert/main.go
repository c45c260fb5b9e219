// Command convert runs one spreadsheet-to-XML conversion from the command
// line, or decrypts a previously encrypted output file.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gridxml/adapters/filecipher"
	"gridxml/app"
	"gridxml/internal/audit"
	"gridxml/internal/config"
)

func main() {
	var (
		inputPath  = flag.String("in", "", "input spreadsheet (.xlsx, .xlsm, .csv) or encrypted file with -decrypt")
		outputPath = flag.String("out", "", "output file path")
		sheetName  = flag.String("sheet", "", "sheet to convert (default: first sheet)")
		encrypt    = flag.Bool("encrypt", false, "encrypt the output at rest")
		decrypt    = flag.Bool("decrypt", false, "decrypt -in to -out instead of converting")
	)
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	secret := os.Getenv("ENCRYPTION_SECRET")
	if secret == "" {
		secret = config.DefaultEncryptionSecret
	}
	cipher := filecipher.New(secret)

	if *decrypt {
		if err := cipher.DecryptFile(*inputPath, *outputPath); err != nil {
			log.Fatalf("Decryption failed: %v", err)
		}
		log.Printf("Decrypted %s to %s", *inputPath, *outputPath)
		return
	}

	service := app.NewConversionService(cipher, audit.New())
	summary, err := service.Run(context.Background(), app.ConversionRequest{
		InputPath:  *inputPath,
		OutputPath: *outputPath,
		SheetName:  *sheetName,
		Encrypt:    *encrypt,
		Actor:      "cli",
	})
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}

	log.Printf("Converted %d rows in %dms, output: %s", summary.RowsProcessed, summary.ConversionTimeMs, summary.OutputPath)
}
