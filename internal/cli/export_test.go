package cli

// Export internal functions for testing.

// RunProbe exports runProbe for testing.
var RunProbe = runProbe

// RunExtract exports runExtract for testing.
var RunExtract = runExtract

// RunChunks exports runChunks for testing.
var RunChunks = runChunks

// RunRecord exports runRecord for testing.
var RunRecord = runRecord

// RunPlay exports runPlay for testing.
var RunPlay = runPlay

// RunSilence exports runSilence for testing.
var RunSilence = runSilence

// RunDevices exports runDevices for testing.
var RunDevices = runDevices

// RunTranscribe exports runTranscribe for testing.
var RunTranscribe = runTranscribe

// RunConfigInit exports runConfigInit for testing.
var RunConfigInit = runConfigInit

// RunConfigShow exports runConfigShow for testing.
var RunConfigShow = runConfigShow

// RunConfigPath exports runConfigPath for testing.
var RunConfigPath = runConfigPath

// ParseTimestamp exports parseTimestamp for testing.
var ParseTimestamp = parseTimestamp

// CheckInputFile exports checkInputFile for testing.
var CheckInputFile = checkInputFile

// CheckOutputPath exports checkOutputPath for testing.
var CheckOutputPath = checkOutputPath

// WriteFileAtomic exports writeFileAtomic for testing.
var WriteFileAtomic = writeFileAtomic

// FileSize exports fileSize for testing.
var FileSize = fileSize

// LoadConfig exports loadConfig for testing.
var LoadConfig = loadConfig

// ClampParallel exports clampParallel for testing.
var ClampParallel = clampParallel

// DeriveOutputPath exports deriveOutputPath for testing.
var DeriveOutputPath = deriveOutputPath

// SupportedFormatsList exports supportedFormatsList for testing.
var SupportedFormatsList = supportedFormatsList

// DefaultRecordingName exports defaultRecordingName for testing.
var DefaultRecordingName = defaultRecordingName

// ChunkSpan exports chunkSpan for testing.
var ChunkSpan = chunkSpan

// ChunksOptions exports chunksOptions for testing.
type ChunksOptions = chunksOptions

// RecordOptions exports recordOptions for testing.
type RecordOptions = recordOptions

// TranscribeOptions exports transcribeOptions for testing.
type TranscribeOptions = transcribeOptions
